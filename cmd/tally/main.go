package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/mholloway/tally/internal/apperr"
	"github.com/mholloway/tally/internal/config"
	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/database/repository"
	"github.com/mholloway/tally/internal/importer"
	"github.com/mholloway/tally/internal/service"
)

const migrationsPath = "internal/database/migrations"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// app bundles the wired services for command actions.
type app struct {
	cfg         config.Config
	importer    *service.ImportService
	categorizer *service.CategorizerService
	reviewer    *service.ReviewerService
	maintenance *service.MaintenanceService
	accounts    *repository.AccountRepo
	categories  *repository.CategoryRepo
	registry    importer.Registry
}

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, migrationsPath); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seed defaults: %w", err)
	}

	registry := importer.NewRegistry(cfg.Import.PayrollEnabled)
	a := &app{
		cfg:         cfg,
		importer:    &service.ImportService{DB: db, Registry: registry},
		categorizer: &service.CategorizerService{Transactions: repository.NewTransactionRepo(db), Rules: repository.NewRuleRepo(db)},
		reviewer:    &service.ReviewerService{DB: db},
		maintenance: &service.MaintenanceService{DB: db},
		accounts:    repository.NewAccountRepo(db),
		categories:  repository.NewCategoryRepo(db),
		registry:    registry,
	}
	return a, func() { _ = db.Close() }, nil
}

func (a *app) money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, a.cfg.UI.CurrencySymbol, cents/100, cents%100)
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("usage: tally import <file> --account <name>")
	}
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	res, err := a.importer.ImportFile(ctx, file, cmd.String("account"), cmd.String("format"))
	if err != nil {
		return err
	}
	if res.DuplicateFile {
		fmt.Println(warnStyle.Render("duplicate file: already imported to this account, nothing to do"))
		return nil
	}
	slog.Info("import complete", "file", filepath.Base(file), "imported", res.Imported, "skipped", res.Skipped)
	fmt.Println(okStyle.Render(fmt.Sprintf("imported %d", res.Imported)) +
		dimStyle.Render(fmt.Sprintf("  (%d duplicate rows skipped)", res.Skipped)))

	if cmd.Bool("categorize") {
		cres, err := a.categorizer.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("categorized %d", cres.Categorized)) +
			dimStyle.Render(fmt.Sprintf("  (%d still need review)", cres.StillFlagged)))
	}
	return nil
}

func categorizeAction(ctx context.Context, cmd *cli.Command) error {
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	res, err := a.categorizer.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("categorized %d", res.Categorized)) +
		dimStyle.Render(fmt.Sprintf("  (%d still need review)", res.StillFlagged)))
	return nil
}

func reviewListAction(ctx context.Context, cmd *cli.Command) error {
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	flagged, err := a.reviewer.ListFlagged(ctx)
	if err != nil {
		return err
	}
	if len(flagged) == 0 {
		fmt.Println(okStyle.Render("nothing to review"))
		return nil
	}
	for _, ft := range flagged {
		fmt.Printf("%s  %s  %10s  %s  %s\n",
			dimStyle.Render(ft.ID[:8]), ft.Date, a.money(ft.Amount), ft.Description,
			dimStyle.Render(ft.AccountName))
	}
	return nil
}

func reviewApplyAction(ctx context.Context, cmd *cli.Command) error {
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	txnID, err := resolveFlaggedID(ctx, a, cmd.String("transaction"))
	if err != nil {
		return err
	}
	cat, err := a.categories.GetByName(ctx, cmd.String("category"))
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: %s", apperr.ErrUnknownCategory, cmd.String("category"))
	}
	in := service.ReviewInput{
		TransactionID: txnID,
		CategoryID:    cat.ID,
		Vendor:        cmd.String("vendor"),
		CreateRule:    cmd.String("rule-pattern") != "",
		RulePattern:   cmd.String("rule-pattern"),
	}
	if err := a.reviewer.Apply(ctx, in); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("reviewed"))

	similar, err := a.reviewer.Similar(ctx, txnID)
	if err == nil && len(similar) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d similar flagged transactions remain:", len(similar))))
		for _, ft := range similar {
			fmt.Printf("  %s  %s  %s\n", dimStyle.Render(ft.ID[:8]), ft.Date, ft.Description)
		}
	}
	return nil
}

// resolveFlaggedID accepts a full transaction id or a unique prefix of one.
func resolveFlaggedID(ctx context.Context, a *app, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("--transaction is required")
	}
	flagged, err := a.reviewer.ListFlagged(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, ft := range flagged {
		if ft.ID == ref {
			return ft.ID, nil
		}
		if strings.HasPrefix(ft.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("transaction ref %q is ambiguous", ref)
			}
			match = ft.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: flagged transaction %s", apperr.ErrNotFound, ref)
	}
	return match, nil
}

func accountsAddAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: tally accounts add <name> --type <account_type>")
	}
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	acct := repository.Account{
		ID:          uuid.NewString(),
		Name:        name,
		AccountType: cmd.String("type"),
	}
	if inst := cmd.String("institution"); inst != "" {
		acct.Institution = &inst
	}
	if err := a.accounts.Insert(ctx, acct); err != nil {
		return fmt.Errorf("add account: %w", err)
	}
	fmt.Println(okStyle.Render("added " + name))
	return nil
}

func accountsListAction(ctx context.Context, cmd *cli.Command) error {
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	accounts, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}
	for _, acct := range accounts {
		inst := ""
		if acct.Institution != nil {
			inst = *acct.Institution
		}
		fmt.Printf("%-30s %-15s %s\n", acct.Name, acct.AccountType, dimStyle.Render(inst))
	}
	return nil
}

func formatsAction(ctx context.Context, cmd *cli.Command) error {
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	for _, k := range a.registry.Kinds() {
		fmt.Printf("%-16s %-22s %s\n", k.Key(), k.Name(),
			dimStyle.Render(strings.Join(k.AccountTypes(), ", ")))
	}
	return nil
}

func resetAction(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("refusing to wipe data without --yes")
	}
	a, done, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := a.maintenance.Reset(ctx); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("database reset"))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "tally",
		Usage: "Import bank statements into a local ledger and categorize them with rules",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a statement file into an account",
				ArgsUsage: "<file>",
				Action:    importAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Usage: "Target account name", Required: true},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Explicit format key (skips detection)"},
					&cli.BoolFlag{Name: "categorize", Aliases: []string{"c"}, Usage: "Run the rule engine after importing"},
				},
			},
			{
				Name:   "categorize",
				Usage:  "Apply rules to all uncategorized transactions",
				Action: categorizeAction,
			},
			{
				Name:  "review",
				Usage: "Work through flagged transactions",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List transactions awaiting review",
						Action: reviewListAction,
					},
					{
						Name:   "apply",
						Usage:  "Categorize one flagged transaction, optionally creating a rule",
						Action: reviewApplyAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "transaction", Aliases: []string{"t"}, Usage: "Transaction id (or unique prefix)", Required: true},
							&cli.StringFlag{Name: "category", Usage: "Category name", Required: true},
							&cli.StringFlag{Name: "vendor", Usage: "Vendor name to record"},
							&cli.StringFlag{Name: "rule-pattern", Usage: "Create a contains rule with this pattern"},
						},
					},
				},
			},
			{
				Name:  "accounts",
				Usage: "Manage import target accounts",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add an account",
						ArgsUsage: "<name>",
						Action:    accountsAddAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "type", Usage: "Account type (checking, credit_card, line_of_credit, payroll)", Required: true},
							&cli.StringFlag{Name: "institution", Usage: "Institution name"},
						},
					},
					{
						Name:   "list",
						Usage:  "List accounts",
						Action: accountsListAction,
					},
				},
			},
			{
				Name:   "formats",
				Usage:  "List registered statement formats",
				Action: formatsAction,
			},
			{
				Name:  "db",
				Usage: "Database maintenance",
				Commands: []*cli.Command{
					{
						Name:   "reset",
						Usage:  "Delete all data, keeping the schema",
						Action: resetAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Usage: "Confirm the wipe"},
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
