package client

import (
	"context"
	"net/url"
	"strconv"
)

// SnapshotService reads snapshot state and history.
type SnapshotService struct {
	c *Client
}

// ListOptions filters snapshot history reads.
type ListOptions struct {
	Platform string
	Dataset  string
	Limit    int
	Offset   int
}

// snapshotListResponse wraps the paginated list response.
type snapshotListResponse struct {
	Snapshots []Snapshot `json:"snapshots"`
	HasMore   bool       `json:"has_more"`
}

// List returns snapshot history for the caller's workspace.
func (s *SnapshotService) List(ctx context.Context, opts *ListOptions) ([]Snapshot, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Platform != "" {
			params.Set("platform", opts.Platform)
		}
		if opts.Dataset != "" {
			params.Set("dataset", opts.Dataset)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var resp snapshotListResponse
	if err := s.c.get(ctx, "/api/v1/snapshots", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Snapshots, resp.HasMore, nil
}

// Get returns one snapshot by id.
func (s *SnapshotService) Get(ctx context.Context, snapshotID string) (*Snapshot, error) {
	var snap Snapshot
	if err := s.c.get(ctx, "/api/v1/snapshots/"+url.PathEscape(snapshotID), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetActive returns the active snapshot for a platform/dataset key.
func (s *SnapshotService) GetActive(ctx context.Context, platform, dataset string) (*Snapshot, error) {
	params := url.Values{}
	params.Set("platform", platform)
	params.Set("dataset", dataset)

	var snap Snapshot
	if err := s.c.get(ctx, "/api/v1/snapshots/active", params, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
