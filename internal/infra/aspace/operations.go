package aspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/httpclient"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// Operations exposes record-level calls. Each call is exactly one round trip; nothing is
// retried and any non-success status is returned as an error.
type Operations struct {
	client *Client
	log    *slog.Logger
}

func NewOperations(client *Client, log *slog.Logger) *Operations {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Operations{
		client: client,
		log:    log.With("logger", "aspace.operations"),
	}
}

var _ ports.RecordService = (*Operations)(nil)

// GetRecord retrieves a record by URI.
func (o *Operations) GetRecord(ctx context.Context, uri string) (domain.Record, error) {
	const op = "aspace.get_record"

	resp, err := o.client.Get(ctx, uri, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, statusError(op, http.MethodGet, o.client.resolve(uri), resp)
	}

	var rec domain.Record
	if err := decode(op, uri, resp, &rec); err != nil {
		return nil, err
	}
	o.log.Info(fmt.Sprintf("Retrieved record: %s", uri))
	return rec, nil
}

// PostNewRecord creates a record by POSTing it to a collection endpoint, e.g.
// "/repositories/2/top_containers". The response carries the new "uri".
func (o *Operations) PostNewRecord(ctx context.Context, record domain.Record, endpoint string) (domain.Record, error) {
	return o.post(ctx, "aspace.post_new_record", record, endpoint)
}

// UpdateRecord POSTs a record back to its own uri.
func (o *Operations) UpdateRecord(ctx context.Context, record domain.Record) (domain.Record, error) {
	const op = "aspace.update_record"

	uri, ok := record.URI()
	if !ok {
		return nil, domain.MissingField(op, "uri")
	}
	return o.post(ctx, op, record, uri)
}

// ListIDs returns every identifier under endpoint via ?all_ids=true.
func (o *Operations) ListIDs(ctx context.Context, endpoint string) ([]int, error) {
	const op = "aspace.list_ids"

	resp, err := o.client.Get(ctx, endpoint, url.Values{"all_ids": {"true"}})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, statusError(op, http.MethodGet, o.client.resolve(endpoint), resp)
	}

	var ids []int
	if err := decode(op, endpoint, resp, &ids); err != nil {
		return nil, err
	}
	o.log.Info("Retrieved identifiers", "endpoint", endpoint, "count", len(ids))
	return ids, nil
}

func (o *Operations) post(ctx context.Context, op string, record domain.Record, uri string) (domain.Record, error) {
	resp, err := o.client.Post(ctx, uri, record)
	if err != nil {
		return nil, err
	}

	o.log.Info(string(resp.BodyBytes), "uri", uri, "status", resp.Status)
	if !resp.OK() {
		return nil, statusError(op, http.MethodPost, o.client.resolve(uri), resp)
	}

	var out domain.Record
	if err := decode(op, uri, resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decode refuses a body the executor cut short; a partial record must never be written back.
func decode(op, uri string, resp httpclient.ResponseData, v any) error {
	if resp.Truncated {
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindDecode,
			Path: uri,
			Err:  fmt.Errorf("%w (%d bytes read)", domain.ErrTooLarge, len(resp.BodyBytes)),
		}
	}
	if err := json.Unmarshal(resp.BodyBytes, v); err != nil {
		return &domain.OpError{
			Op:   op,
			Kind: domain.KindDecode,
			Path: uri,
			Err:  err,
		}
	}
	return nil
}
