package constants

const (
	APIName = "FI"
)

const (
	DefaultTop  = 20
	DefaultSkip = 0
)

const (
	DefaultConfigPath1 = "/etc/fi"
	DefaultConfigPath2 = "/config"
)
