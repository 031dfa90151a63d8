package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/oseducation/kgrest/nodeapi"
	"github.com/oseducation/kgrest/pagination"
	"github.com/oseducation/kgrest/workerpool"
	"github.com/spf13/cobra"
)

const defaultDeleteConcurrency = 4

type NodesListOptions struct {
	*GlobalOptions

	Name        string
	Description string
	Page        int
	PerPage     int
	All         bool
}

type NodeWriteOptions struct {
	*GlobalOptions

	ID          string
	Name        string
	Description string
	NodeType    string
}

func newNodesCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "nodes",
		Short: "Manage knowledge-graph nodes",
	}

	cmd.AddCommand(
		newNodesListCommand(global),
		newNodesCreateCommand(global),
		newNodesUpdateCommand(global),
		newNodesDeleteCommand(global),
	)

	return cmd
}

func newNodesListCommand(global *GlobalOptions) *cobra.Command {
	defaults := nodeapi.DefaultListOptions()
	opts := &NodesListOptions{GlobalOptions: global} //nolint:exhaustruct

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNodesList(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "only nodes whose name contains this term")
	cmd.Flags().StringVar(&opts.Description, "description", "", "only nodes whose description contains this term")
	cmd.Flags().IntVar(&opts.Page, "page", defaults.Page, "page number, negative for all")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", defaults.PerPage, "nodes per page, negative for all")
	cmd.Flags().BoolVar(&opts.All, "all", false,
		fmt.Sprintf("walk every page, --per-page nodes at a time (%d when not positive)", pagination.DefaultPageSize))

	return cmd
}

func runNodesList(ctx context.Context, opts *NodesListOptions) error {
	api := nodeapi.New(opts.client)
	listOpts := nodeapi.ListOptions{
		TermInName:        opts.Name,
		TermInDescription: opts.Description,
		Page:              opts.Page,
		PerPage:           opts.PerPage,
	}

	var (
		nodes []*nodeapi.Node
		err   error
	)

	if opts.All {
		nodes, err = api.ListAll(ctx, listOpts, opts.PerPage)
	} else {
		nodes, err = api.List(ctx, listOpts)
	}

	if err != nil {
		return describeError(err)
	}

	return opts.printJSON(nodes)
}

func newNodesCreateCommand(global *GlobalOptions) *cobra.Command {
	opts := &NodeWriteOptions{GlobalOptions: global} //nolint:exhaustruct

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "create",
		Short: "Create a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := nodeapi.New(opts.client).Create(cmd.Context(), opts.node())
			if err != nil {
				return describeError(err)
			}

			return opts.printJSON(created)
		},
	}

	addNodeFlags(cmd, opts)

	return cmd
}

func newNodesUpdateCommand(global *GlobalOptions) *cobra.Command {
	opts := &NodeWriteOptions{GlobalOptions: global} //nolint:exhaustruct

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "update <id>",
		Short: "Update a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ID = args[0]

			msg, err := nodeapi.New(opts.client).Update(cmd.Context(), opts.node())
			if err != nil {
				return describeError(err)
			}

			_, err = fmt.Fprintln(opts.out, msg)

			return err
		},
	}

	addNodeFlags(cmd, opts)

	return cmd
}

func newNodesDeleteCommand(global *GlobalOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete one or more nodes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodesDelete(cmd.Context(), global, args, concurrency)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultDeleteConcurrency, "number of deletes in flight")

	return cmd
}

func runNodesDelete(ctx context.Context, opts *GlobalOptions, nodeIDs []string, concurrency int) error {
	pool := workerpool.New(
		workerpool.WithName("node-delete"),
		workerpool.WithWorkerCount(concurrency),
		workerpool.WithLogger(opts.logger),
	)

	results := nodeapi.New(opts.client).DeleteMany(ctx, nodeIDs, pool)

	if len(results) == 1 {
		if results[0].Err != nil {
			return describeError(results[0].Err)
		}

		_, err := fmt.Fprintln(opts.out, results[0].Message)

		return err
	}

	var errs []error

	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.NodeID, describeError(result.Err)))

			continue
		}

		fmt.Fprintf(opts.out, "%s: %s\n", result.NodeID, result.Message)
	}

	return errors.Join(errs...)
}

func addNodeFlags(cmd *cobra.Command, opts *NodeWriteOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "node name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "node description")
	cmd.Flags().StringVar(&opts.NodeType, "type", "", "node type")
}

func (o *NodeWriteOptions) node() *nodeapi.Node {
	return &nodeapi.Node{ //nolint:exhaustruct
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		NodeType:    o.NodeType,
	}
}
