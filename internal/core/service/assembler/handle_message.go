package assembler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
)

// HandleMessage consumes an assembly request from the event broker and runs
// the assembly synchronously, so broker acknowledgement tracks completion.
// It implements port.MessageService for standalone worker deployments.
func (s *Service) HandleMessage(ctx context.Context, data []byte) error {
	var request domain.AssemblyRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return fmt.Errorf("unmarshal assembly request: %w", err)
	}

	s.logger.Info("received assembly request", "token", request.Token)
	return s.Assemble(ctx, request.Token)
}
