package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// parseParams parses --arg values of the form kind:value, in order.
func parseParams(raw []string) ([]types.Value, error) {
	params := make([]types.Value, 0, len(raw))
	for i, a := range raw {
		kindName, text, ok := strings.Cut(a, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --arg %q (expected kind:value)", a)
		}
		k, err := types.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("--arg %d: %w", i+1, err)
		}
		v, err := types.ParseValue(k, text)
		if err != nil {
			return nil, fmt.Errorf("--arg %d: %w", i+1, err)
		}
		params = append(params, v)
	}
	return params, nil
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run one or more statements without parameters",
		Long: `Exec runs SQL text once. The text may hold several statements separated
by semicolons and takes no parameters.

Example:
  shelf exec "CREATE TABLE Person (id integer PRIMARY KEY, name text)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConn(cmd, func(c *sqlite.Conn) error {
				if err := c.NewStatement().Exec(args[0]); err != nil {
					return cmdError("exec", err)
				}
				if !flags.jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), "OK")
				}
				return nil
			})
		},
	}
}

func newQueryCmd() *cobra.Command {
	var (
		shapeFlag string
		rawArgs   []string
		out       string
	)
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print its rows",
		Long: `Query prepares SQL text, binds each --arg to the next placeholder and
decodes every row into the kinds listed by --shape. With --out the rows
are written to a JSONL file, one JSON array per line, instead of printed.

Kinds: int32, uint32, int64, uint64, float32, float64, text

Example:
  shelf query "SELECT id, name FROM Person WHERE id > ?" --shape int64,text --arg int64:10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := types.ParseShape(shapeFlag)
			if err != nil {
				return fmt.Errorf("--shape: %w", err)
			}
			if len(shape) == 0 {
				return fmt.Errorf("--shape must list at least one kind")
			}
			params, err := parseParams(rawArgs)
			if err != nil {
				return err
			}
			return withConn(cmd, func(c *sqlite.Conn) error {
				rows, err := c.NewStatement().ExecuteRows(args[0], shape, params...)
				if err != nil {
					return cmdError("query", err)
				}
				if out != "" {
					if err := sqlite.WriteRowsJSONL(out, rows); err != nil {
						return sysError("write rows: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), out)
					return nil
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), rowsJSON(rows))
				}
				return writeTable(cmd.OutOrStdout(), shape, rows)
			})
		},
	}
	cmd.Flags().StringVar(&shapeFlag, "shape", "", "comma-separated result kinds, e.g. int64,text")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "parameter as kind:value (repeatable, bound in order)")
	cmd.Flags().StringVar(&out, "out", "", "write rows to this JSONL file")
	_ = cmd.MarkFlagRequired("shape")
	return cmd
}

func newLoadCmd() *cobra.Command {
	var (
		shapeFlag   string
		columnsFlag string
	)
	cmd := &cobra.Command{
		Use:   "load <table> <file.jsonl>",
		Short: "Insert JSONL rows into a table in one transaction",
		Long: `Load reads one JSON array per line, decodes each into the kinds listed by
--shape and inserts it into the named columns. All rows are inserted inside
one IMMEDIATE transaction; the first failure rolls every row back.

Example:
  shelf load Person people.jsonl --columns id,name --shape int64,text`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := types.ParseShape(shapeFlag)
			if err != nil {
				return fmt.Errorf("--shape: %w", err)
			}
			columns := splitList(columnsFlag)
			if len(columns) != len(shape) {
				return fmt.Errorf("--columns lists %d names, --shape %d kinds", len(columns), len(shape))
			}
			rows, err := sqlite.ReadRowsJSONL(args[1], shape)
			if err != nil {
				return fmt.Errorf("read rows: %w", err)
			}
			return withConn(cmd, func(c *sqlite.Conn) error {
				q, err := sqlite.NewQuery(c)
				if err != nil {
					return sysError("%w", err)
				}
				if err := q.Load(args[0], columns, rows); err != nil {
					return cmdError("load", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s\n", len(rows), args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&shapeFlag, "shape", "", "comma-separated kinds of each record, e.g. int64,text")
	cmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated column names, one per kind")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newScalarCmd() *cobra.Command {
	var (
		kindFlag string
		rawArgs  []string
	)
	cmd := &cobra.Command{
		Use:   "scalar <sql>",
		Short: "Run a single-column query and print the first value",
		Long: `Scalar runs a query whose result has one column and prints the value of
the first row decoded as --kind. A query with no rows is an error.

Example:
  shelf scalar "SELECT COUNT(*) FROM Person"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(kindFlag)
			if err != nil {
				return fmt.Errorf("--kind: %w", err)
			}
			params, err := parseParams(rawArgs)
			if err != nil {
				return err
			}
			return withConn(cmd, func(c *sqlite.Conn) error {
				v, err := c.NewStatement().ScalarValue(args[0], kind, params...)
				if err != nil {
					return cmdError("scalar", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"kind":  kind.String(),
						"value": v.Interface(),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", types.KindInt64.String(), "kind of the result value")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "parameter as kind:value (repeatable, bound in order)")
	return cmd
}
