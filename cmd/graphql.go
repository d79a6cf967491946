package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/term"

	"github.com/blogql/blogql/internal/graph"
	"github.com/blogql/blogql/internal/server"
)

var (
	queryJSON       bool
	queryVariables  string
	queryOperation  string
	querySchemaOnly bool
)

var graphqlCmd = &cobra.Command{
	Use:     "graphql <query>",
	Aliases: []string{"query"},
	Short:   "Execute a GraphQL query or mutation",
	Long: `Execute a GraphQL query or mutation directly against the database.

The argument should be a valid GraphQL query or mutation string.

Examples:
  # List all users
  blogql graphql '{ users { id name balance } }'

  # Get a user with profile and posts
  blogql graphql '{ user(id: "…") { name profile { yearOfBirth } posts { title } } }'

  # Create a user with variables
  blogql graphql -v '{"dto": {"name": "Alice", "balance": 10}}' \
    'mutation Create($dto: CreateUserInput!) { createUser(dto: $dto) { id } }'

  # Read from stdin
  cat query.graphql | blogql graphql

  # Print the schema
  blogql graphql --schema`,
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			return nil
		}
		// Allow 0 args if stdin has data, or exactly 1 arg
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 argument (the GraphQL query)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Schema-only mode
		if querySchemaOnly {
			fmt.Print(GetGraphQLSchema())
			return nil
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		} else {
			// Fall back to a piped query
			stdinQuery, err := readFromStdin()
			if err != nil {
				return err
			}
			if stdinQuery == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}
			query = stdinQuery
		}

		// Parse variables if provided
		var variables map[string]any
		if queryVariables != "" {
			dec := json.NewDecoder(strings.NewReader(queryVariables))
			dec.UseNumber()
			if err := dec.Decode(&variables); err != nil {
				return fmt.Errorf("invalid variables JSON: %w", err)
			}
		}

		// Execute the query
		result, err := executeQuery(cmd.Context(), query, variables, queryOperation)
		if err != nil {
			return err
		}

		// Output, colored only on a terminal
		if queryJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Println(string(result))
		} else {
			prettyPrint(result)
		}
		return nil
	},
}

// readFromStdin reads the query from stdin if data is piped in.
func readFromStdin() (string, error) {
	// Check if stdin is a pipe or file rather than a terminal
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", nil
	}

	// Read all data from stdin
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// executeQuery runs a GraphQL operation against the store with the same
// executor extensions the server uses. It returns only the data portion of
// the response; any GraphQL error is returned as an error.
func executeQuery(ctx context.Context, query string, variables map[string]any, operationName string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	es := graph.NewExecutableSchema(graph.Config{
		Resolvers: &graph.Resolver{
			Store:          st,
			Logger:         logger,
			MinYearOfBirth: cfg.Profiles.MinYearOfBirth,
		},
	})
	// Same extensions as the HTTP endpoint
	exec := server.NewExecutor(es, cfg.GraphQL, logger)

	ctx = graphql.StartOperationTrace(ctx)
	params := &graphql.RawParams{
		Query:         query,
		Variables:     server.NormalizeVariables(variables),
		OperationName: operationName,
	}

	opCtx, errs := exec.CreateOperationContext(ctx, params)
	if errs != nil {
		return nil, formatGraphQLErrors(errs)
	}

	ctx = graphql.WithOperationContext(ctx, opCtx)
	handler, ctx := exec.DispatchOperation(ctx, opCtx)
	resp := handler(ctx)

	if len(resp.Errors) > 0 {
		return nil, formatGraphQLErrors(resp.Errors)
	}
	return resp.Data, nil
}

// formatGraphQLErrors folds GraphQL errors into a single error.
func formatGraphQLErrors(errs gqlerror.List) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return fmt.Errorf("graphql: %s", errs[0].Message)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("graphql errors:\n  %s", strings.Join(msgs, "\n  "))
}

func prettyPrint(data []byte) {
	fmt.Println(string(pretty.Color(pretty.Pretty(data), nil)))
}

// GetGraphQLSchema returns the GraphQL schema as SDL.
func GetGraphQLSchema() string {
	es := graph.NewExecutableSchema(graph.Config{Resolvers: &graph.Resolver{}})

	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(es.Schema())
	return buf.String()
}

func init() {
	graphqlCmd.Flags().BoolVar(&queryJSON, "json", false, "Output raw JSON (no formatting)")
	graphqlCmd.Flags().StringVarP(&queryVariables, "variables", "v", "", "Query variables as JSON string")
	graphqlCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "Operation name (for multi-operation documents)")
	graphqlCmd.Flags().BoolVar(&querySchemaOnly, "schema", false, "Print the GraphQL schema and exit")
	rootCmd.AddCommand(graphqlCmd)
}
