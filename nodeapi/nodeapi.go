package nodeapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/oseducation/kgrest/pagination"
	"github.com/oseducation/kgrest/rest"
	"github.com/oseducation/kgrest/validator"
	"github.com/oseducation/kgrest/workerpool"
)

const (
	nodesPath = "/nodes/"

	DefaultPage    = -1
	DefaultPerPage = -1
)

var (
	ErrMissingNodeID = errors.New("nodeapi: missing node id")
	ErrInvalidNode   = errors.New("nodeapi: invalid node")
)

type Node struct {
	ID          string `json:"id"`
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	NodeType    string `json:"node_type"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// ListOptions filters a node listing. Negative Page or PerPage values ask the
// server for everything.
type ListOptions struct {
	TermInName        string
	TermInDescription string
	Page              int
	PerPage           int
}

func DefaultListOptions() ListOptions {
	return ListOptions{
		TermInName:        "",
		TermInDescription: "",
		Page:              DefaultPage,
		PerPage:           DefaultPerPage,
	}
}

func (o ListOptions) query() url.Values {
	query := url.Values{}

	if o.TermInName != "" {
		query.Set("term_in_name", o.TermInName)
	}

	if o.TermInDescription != "" {
		query.Set("term_in_description", o.TermInDescription)
	}

	query.Set("page", strconv.Itoa(o.Page))
	query.Set("per_page", strconv.Itoa(o.PerPage))

	return query
}

type messageResponse struct {
	Msg string `json:"msg"`
}

// API wraps the /nodes endpoints of the knowledge-graph backend.
type API struct {
	client    *rest.Client
	validator *validator.Validator
}

func New(client *rest.Client) *API {
	return &API{
		client:    client,
		validator: validator.New(),
	}
}

func (a *API) List(ctx context.Context, opts ListOptions) ([]*Node, error) {
	nodes, err := rest.GetJSON[[]*Node](ctx, a.client, nodesPath, opts.query())
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	return nodes, nil
}

// ListAll walks the listing perPage nodes at a time, keeping the name and
// description filters of opts.
func (a *API) ListAll(ctx context.Context, opts ListOptions, perPage int) ([]*Node, error) {
	return pagination.Collect(ctx, perPage, func(ctx context.Context, page, perPage int) ([]*Node, error) {
		opts.Page = page
		opts.PerPage = perPage

		return a.List(ctx, opts)
	})
}

func (a *API) Create(ctx context.Context, node *Node) (*Node, error) {
	if err := a.validate(node); err != nil {
		return nil, err
	}

	created, err := rest.PostJSON[*Node](ctx, a.client, nodesPath, node)
	if err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	return created, nil
}

// Update returns the confirmation message sent by the server.
func (a *API) Update(ctx context.Context, node *Node) (string, error) {
	if err := a.validate(node); err != nil {
		return "", err
	}

	if node.ID == "" {
		return "", ErrMissingNodeID
	}

	resp, err := rest.PutJSON[messageResponse](ctx, a.client, nodesPath, node)
	if err != nil {
		return "", fmt.Errorf("failed to update node %s: %w", node.ID, err)
	}

	return resp.Msg, nil
}

// Delete returns the confirmation message sent by the server.
func (a *API) Delete(ctx context.Context, nodeID string) (string, error) {
	if nodeID == "" {
		return "", ErrMissingNodeID
	}

	resp, err := rest.DeleteJSON[messageResponse](ctx, a.client, nodesPath, url.Values{"node_id": {nodeID}})
	if err != nil {
		return "", fmt.Errorf("failed to delete node %s: %w", nodeID, err)
	}

	return resp.Msg, nil
}

type DeleteResult struct {
	NodeID  string
	Message string
	Err     error
}

// DeleteMany deletes nodeIDs on pool's workers. Results follow the order of
// nodeIDs; one failure does not stop the others.
func (a *API) DeleteMany(ctx context.Context, nodeIDs []string, pool *workerpool.WorkerPool) []DeleteResult {
	results := make([]DeleteResult, len(nodeIDs))
	tasks := make([]workerpool.Task, len(nodeIDs))

	for i, nodeID := range nodeIDs {
		results[i].NodeID = nodeID

		tasks[i] = func(ctx context.Context) error {
			msg, err := a.Delete(ctx, nodeID)
			results[i].Message = msg

			return err
		}
	}

	for i, err := range pool.Run(ctx, tasks) {
		results[i].Err = err
	}

	return results
}

func (a *API) validate(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if err := a.validator.Validate(node); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNode, err)
	}

	return nil
}
