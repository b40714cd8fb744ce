package config

const (
	TypeLoginAttemptRetention = "retention:login_attempts"
	TypeDomainDNSAudit        = "audit:domain_dns"
)

var DefinedTasks = map[string]struct{}{
	TypeLoginAttemptRetention: {},
	TypeDomainDNSAudit:        {},
}
