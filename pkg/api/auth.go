package api

// RegisterRequest представляет запрос на регистрацию нового узла в mesh
type RegisterRequest struct {
	NodeName     string   `json:"node_name"`     // уникальное имя узла (например, "store-harare-01")
	AuthKeyHash  string   `json:"auth_key_hash"` // SHA256 хеш auth_key (hex-encoded)
	PublicSalt   string   `json:"public_salt"`   // base64 encoded salt (32 bytes)
	Address      string   `json:"address"`       // адрес, по которому узел доступен для peer-запросов
	Capabilities []string `json:"capabilities"`  // возможности узла (pos, inventory, payroll, ...)
}

// RegisterResponse представляет ответ на успешную регистрацию узла
type RegisterResponse struct {
	NodeID  string `json:"node_id"` // UUID узла
	Message string `json:"message"` // сообщение об успешной регистрации
}

// SaltResponse представляет ответ с публичной солью узла
type SaltResponse struct {
	PublicSalt string `json:"public_salt"` // base64 encoded salt
}

// LoginRequest представляет запрос на аутентификацию узла
type LoginRequest struct {
	NodeName    string `json:"node_name"`     // имя узла
	AuthKeyHash string `json:"auth_key_hash"` // SHA256 хеш auth_key (hex-encoded)
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
