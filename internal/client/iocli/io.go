package iocli

//go:generate moq -out io_mock.go . IO

// IO абстрагирует терминальный ввод-вывод команд, чтобы тесты
// могли перехватывать вывод и подставлять ввод
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
}
