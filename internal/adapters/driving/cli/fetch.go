package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
)

// fetchOptions holds the flags of a fetch command.
type fetchOptions struct {
	module       string
	login        string
	password     string
	fields       []string
	customFields string
}

var (
	accountsOpts     fetchOptions
	transactionsOpts fetchOptions
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Fetch the accounts of a login",
	Long: `Logs into the source with the given credentials and prints its accounts
as a JSON envelope on stdout.

Examples:
  finconnect accounts --module demo --login alice --password secret
  finconnect accounts --module examplebank --login 123456 --field website=pro`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFetch(cmd, domain.OperationAccounts, &accountsOpts)
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Fetch the transactions of every account of a login",
	Long: `Logs into the source with the given credentials and prints the history of
every account as a JSON envelope on stdout. Accounts whose type has no
history support are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFetch(cmd, domain.OperationTransactions, &transactionsOpts)
	},
}

func init() {
	addFetchFlags(accountsCmd, &accountsOpts)
	addFetchFlags(transactionsCmd, &transactionsOpts)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(transactionsCmd)
}

func addFetchFlags(cmd *cobra.Command, o *fetchOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&o.module, "module", "m", "", "source module identifier")
	flags.StringVarP(&o.login, "login", "l", "", "login at the source")
	flags.StringVarP(&o.password, "password", "p", "", "password (prompted for when omitted)")
	flags.StringArrayVarP(&o.fields, "field", "f", nil, "custom field as name=value (repeatable)")
	flags.StringVar(&o.customFields, "custom-fields", "", `custom fields as JSON: [{"name":"...","value":"..."}]`)
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("login")
}

func runFetch(cmd *cobra.Command, op domain.Operation, o *fetchOptions) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if connectorService == nil {
		return errors.New("connector not configured")
	}

	fields, err := parseCustomFields(o.fields, o.customFields)
	if err != nil {
		return err
	}

	password := o.password
	if !cmd.Flags().Changed("password") {
		password, err = promptPassword(cmd.ErrOrStderr(), cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	envelope := connectorService.Fetch(ctx, driving.FetchRequest{
		SourceID:  o.module,
		Login:     o.login,
		Password:  password,
		Fields:    fields,
		Operation: op,
	})
	return writeEnvelope(cmd.OutOrStdout(), envelope)
}

// parseCustomFields merges --custom-fields JSON and --field name=value
// flags, in that order. Entries are passed on as given: nameless entries
// are reported by the connector as invalid parameters.
func parseCustomFields(pairs []string, raw string) ([]domain.CustomField, error) {
	var fields []domain.CustomField
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("--custom-fields must be a JSON list of {\"name\", \"value\"} objects: %w", err)
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--field %q: expected name=value", pair)
		}
		fields = append(fields, domain.CustomField{Name: name, Value: value})
	}
	return fields, nil
}

// promptPassword reads the password without echo from a terminal, or one
// line from non-interactive input.
func promptPassword(prompt io.Writer, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeEnvelope(w io.Writer, envelope domain.ResultEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
