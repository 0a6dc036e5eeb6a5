package client

import "context"

// GovernanceService executes the governed mutations.
type GovernanceService struct {
	c *Client
}

type promoteRequest struct {
	IngestionLogID string `json:"ingestion_log_id"`
}

type rollbackRequest struct {
	SnapshotID string `json:"snapshot_id"`
	Reason     string `json:"reason"`
}

// Promote turns a validated ingestion log into the new active snapshot for
// its platform/dataset key. Requires the admin role or higher.
func (s *GovernanceService) Promote(ctx context.Context, ingestionLogID string) (*PromoteResponse, error) {
	var resp PromoteResponse
	if err := s.c.post(ctx, "/api/v1/governance/promote", promoteRequest{IngestionLogID: ingestionLogID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Rollback reactivates a previously inactive snapshot. reason is mandatory
// and is stored verbatim in the audit trail. Requires the owner role.
func (s *GovernanceService) Rollback(ctx context.Context, snapshotID, reason string) (*RollbackResponse, error) {
	var resp RollbackResponse
	if err := s.c.post(ctx, "/api/v1/governance/rollback", rollbackRequest{SnapshotID: snapshotID, Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
