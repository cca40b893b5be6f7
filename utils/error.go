package utils

import (
	"fmt"
)

type InvalidEnvVarError struct {
	Entry string
}

func (err *InvalidEnvVarError) Error() string {
	return fmt.Sprintf("'%s' is not a valid environment variable definition. Expected KEY=VALUE", err.Entry)
}
