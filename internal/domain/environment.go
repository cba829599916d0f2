package domain

import (
	"fmt"
	"strings"
)

// InstanceName selects an ArchivesSpace deployment tier.
type InstanceName string

const (
	InstanceDev  InstanceName = "dev"
	InstanceProd InstanceName = "prod"
)

// ParseInstanceName accepts "dev" or "prod" (case and surrounding space ignored).
func ParseInstanceName(s string) (InstanceName, error) {
	switch InstanceName(strings.ToLower(strings.TrimSpace(s))) {
	case InstanceDev:
		return InstanceDev, nil
	case InstanceProd:
		return InstanceProd, nil
	}
	return "", &OpError{
		Op:   "domain.instance",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("%w: instance %q (expected dev|prod)", ErrInvalidConfig, s),
	}
}

// EnvPrefix is the environment variable prefix for the tier, e.g. "PROD".
func (n InstanceName) EnvPrefix() string {
	return strings.ToUpper(string(n))
}

// Instance is a resolved deployment: where to connect and as whom.
type Instance struct {
	Name     InstanceName
	BaseURL  string
	User     string
	Password string
}
