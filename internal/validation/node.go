package validation

import (
	"fmt"
	"regexp"
)

// NodeNamePattern определяет допустимый формат имени узла.
// Латинские буквы, цифры, дефис и нижнее подчеркивание, 3-64 символа.
// Имена вида "store-harare-01" используются как идентификаторы в auth flow.
var NodeNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// EntityTypePattern определяет допустимый формат типа сущности в событии.
// snake_case, как имена таблиц исходной платформы ("network_printers", "payroll_runs").
var EntityTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

const (
	// MinNodeNameLen минимальная длина имени узла
	MinNodeNameLen = 3
	// MaxNodeNameLen максимальная длина имени узла
	MaxNodeNameLen = 64
	// MinClusterSecretLen минимальная длина cluster secret
	MinClusterSecretLen = 16
)

// ValidateNodeName проверяет, что имя узла соответствует требованиям
func ValidateNodeName(name string) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	if len(name) < MinNodeNameLen {
		return fmt.Errorf("node name must be at least %d characters long", MinNodeNameLen)
	}

	if len(name) > MaxNodeNameLen {
		return fmt.Errorf("node name must not exceed %d characters", MaxNodeNameLen)
	}

	if !NodeNamePattern.MatchString(name) {
		return fmt.Errorf("node name can only contain letters, numbers, hyphens and underscores")
	}

	return nil
}

// ValidateEntityType проверяет тип сущности в событии синхронизации
func ValidateEntityType(entityType string) error {
	if entityType == "" {
		return fmt.Errorf("entity type cannot be empty")
	}

	if !EntityTypePattern.MatchString(entityType) {
		return fmt.Errorf("entity type must be snake_case (lowercase letters, numbers, underscores)")
	}

	return nil
}

// ValidateClusterSecret проверяет минимальные требования к cluster secret
func ValidateClusterSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("cluster secret cannot be empty")
	}

	if len(secret) < MinClusterSecretLen {
		return fmt.Errorf("cluster secret must be at least %d characters long", MinClusterSecretLen)
	}

	return nil
}
