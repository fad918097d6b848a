package module

import "ecotrack/internal/services/build/domain"

// Ports defines build module ports exposed to the CLI
type Ports struct {
	Runner domain.RunnerPort
}
