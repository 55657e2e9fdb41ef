package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sla0ui/siteintel/internal/extractor"
	"github.com/Sla0ui/siteintel/internal/fetcher"
	"github.com/Sla0ui/siteintel/internal/logger"
	"github.com/Sla0ui/siteintel/internal/models"
	"github.com/Sla0ui/siteintel/internal/pipeline"
	"github.com/Sla0ui/siteintel/internal/reporter"
	"github.com/Sla0ui/siteintel/internal/security"
	"github.com/Sla0ui/siteintel/internal/server"
)

const (
	AppName    = "siteintel"
	AppVersion = "1.0.0"
	AppAuthor  = "Sla0ui"
	AppRepo    = "https://github.com/Sla0ui/siteintel"
)

var (
	green   = color.New(color.FgGreen).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	blue    = color.New(color.FgBlue).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

const logo = `
   _____ _ _       _____       _       _
  / ____(_) |     |_   _|     | |     | |
 | (___  _| |_ ___  | |  _ __ | |_ ___| |
  \___ \| | __/ _ \ | | | '_ \| __/ _ \ |
  ____) | | ||  __/_| |_| | | | ||  __/ |
 |_____/|_|\__\___|_____|_| |_|\__\___|_|
                                By Sla0ui
`

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "siteintel",
		Short: "Contact extraction and security posture scanning for websites",
		Long: logo + `
SiteIntel fetches web pages (plain HTTP first, headless browser as fallback),
extracts contact details such as phones, emails, addresses, social profiles and
WhatsApp numbers, and grades a site's TLS and security header posture.

Examples:
  siteintel extract https://example.com
  siteintel bulk urls.txt --output-format json,csv,html
  siteintel security https://example.com
  siteintel serve --listen :8080`,
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := models.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.Duration("deadline", defaults.FetchDeadline, "Overall deadline for fetching one page")
	flags.DurationP("timeout", "t", defaults.HTTPTimeout, "Timeout for the plain HTTP fetch")
	flags.Duration("browser-timeout", defaults.NavigationTimeout, "Navigation timeout for the headless browser")
	flags.Duration("render-wait", defaults.RenderWait, "Time to let scripts settle after the page loads")
	flags.Int("min-text", defaults.MinTextLength, "Minimum visible text length before falling back to the browser")
	flags.Duration("security-timeout", defaults.SecurityTimeout, "Timeout for the security scan requests")
	flags.Duration("delay", defaults.BulkDelay, "Delay between bulk items")
	flags.Int("max-urls", defaults.MaxBulkURLs, "Maximum URLs per bulk batch")
	flags.StringP("user-agent", "u", defaults.UserAgent, "User agent string used for page fetches")
	flags.BoolP("verify-tls", "T", defaults.VerifyTLS, "Verify TLS certificates when fetching pages")
	flags.Int("max-redirects", defaults.MaxRedirects, "Maximum number of redirects to follow")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "Log format (console, json)")
	flags.StringP("output-dir", "o", defaults.OutputDir, "Directory for output files")
	flags.String("output-format", defaults.OutputFormat, "Report format(s) - comma separated (json,csv,html,md)")
	flags.BoolP("quiet", "q", defaults.Quiet, "Quiet mode - only output to files")
	flags.BoolP("no-color", "n", defaults.NoColor, "Disable colorized output")
	flags.Bool("no-progress", defaults.NoProgress, "Disable progress bar")

	extractCmd := &cobra.Command{
		Use:   "extract URL",
		Short: "Extract contact details from a single URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extractCmd.Flags().Bool("json", false, "Print the result as JSON")

	bulkCmd := &cobra.Command{
		Use:   "bulk URL_FILE | URL...",
		Short: "Extract contact details from many URLs",
		Long: `Extract contact details from a list of URLs, read from a file (one URL per
line, # starts a comment) or given as arguments. Results are written to the
output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBulk,
	}

	securityCmd := &cobra.Command{
		Use:   "security URL",
		Short: "Grade the TLS and security header posture of a URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecurity,
	}
	securityCmd.Flags().Bool("json", false, "Print the result as JSON")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringP("listen", "l", defaults.ListenAddr, "Address to listen on")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", AppName, AppVersion)
			fmt.Printf("By %s - %s\n", AppAuthor, AppRepo)
		},
	}

	rootCmd.AddCommand(extractCmd, bulkCmd, securityCmd, serveCmd, versionCmd)
}

// loadConfig builds the configuration from flags, then applies SITEINTEL_*
// environment overrides. A .env file in the working directory is loaded at startup.
func loadConfig(cmd *cobra.Command) (*models.Config, error) {
	flags := cmd.Flags()
	config := models.DefaultConfig()

	config.FetchDeadline, _ = flags.GetDuration("deadline")
	config.HTTPTimeout, _ = flags.GetDuration("timeout")
	config.NavigationTimeout, _ = flags.GetDuration("browser-timeout")
	config.RenderWait, _ = flags.GetDuration("render-wait")
	config.MinTextLength, _ = flags.GetInt("min-text")
	config.SecurityTimeout, _ = flags.GetDuration("security-timeout")
	config.BulkDelay, _ = flags.GetDuration("delay")
	config.MaxBulkURLs, _ = flags.GetInt("max-urls")
	config.UserAgent, _ = flags.GetString("user-agent")
	config.VerifyTLS, _ = flags.GetBool("verify-tls")
	config.MaxRedirects, _ = flags.GetInt("max-redirects")
	config.LogLevel, _ = flags.GetString("log-level")
	config.LogFormat, _ = flags.GetString("log-format")
	config.OutputDir, _ = flags.GetString("output-dir")
	config.OutputFormat, _ = flags.GetString("output-format")
	config.Quiet, _ = flags.GetBool("quiet")
	config.NoColor, _ = flags.GetBool("no-color")
	config.NoProgress, _ = flags.GetBool("no-progress")
	if flags.Lookup("listen") != nil {
		config.ListenAddr, _ = flags.GetString("listen")
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnv overrides config with SITEINTEL_* variables. Unparsable values are ignored.
func applyEnv(config *models.Config) {
	durations := map[string]*time.Duration{
		"SITEINTEL_FETCH_DEADLINE":   &config.FetchDeadline,
		"SITEINTEL_HTTP_TIMEOUT":     &config.HTTPTimeout,
		"SITEINTEL_BROWSER_TIMEOUT":  &config.NavigationTimeout,
		"SITEINTEL_RENDER_WAIT":      &config.RenderWait,
		"SITEINTEL_SECURITY_TIMEOUT": &config.SecurityTimeout,
		"SITEINTEL_BULK_DELAY":       &config.BulkDelay,
	}
	for key, target := range durations {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*target = d
			}
		}
	}

	ints := map[string]*int{
		"SITEINTEL_MIN_TEXT_LENGTH": &config.MinTextLength,
		"SITEINTEL_MAX_BULK_URLS":   &config.MaxBulkURLs,
		"SITEINTEL_MAX_REDIRECTS":   &config.MaxRedirects,
	}
	for key, target := range ints {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	if v := os.Getenv("SITEINTEL_VERIFY_TLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.VerifyTLS = b
		}
	}

	strs := map[string]*string{
		"SITEINTEL_USER_AGENT":  &config.UserAgent,
		"SITEINTEL_LISTEN_ADDR": &config.ListenAddr,
		"SITEINTEL_LOG_LEVEL":   &config.LogLevel,
		"SITEINTEL_LOG_FORMAT":  &config.LogFormat,
		"SITEINTEL_OUTPUT_DIR":  &config.OutputDir,
	}
	for key, target := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
}

// setup loads the configuration, applies console settings and builds the logger.
func setup(cmd *cobra.Command) (*models.Config, *zap.Logger, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	if config.NoColor {
		color.NoColor = true
	}

	if !config.Quiet {
		if !config.NoColor {
			fmt.Print(logo + "\n")
		} else {
			fmt.Println(strings.Replace(logo, "By Sla0ui", "By Sla0ui - Version "+AppVersion, 1))
		}
	}

	log, err := logger.New(logger.Config{Level: config.LogLevel, Format: config.LogFormat})
	if err != nil {
		return nil, nil, err
	}
	return config, log, nil
}

func newPipeline(config *models.Config, log *zap.Logger) *pipeline.Pipeline {
	f := fetcher.New(config,
		fetcher.WithRenderer(fetcher.NewBrowserRenderer(config, log)),
		fetcher.WithLogger(log),
	)
	return pipeline.New(f, extractor.New(log), config, log)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runExtract(cmd *cobra.Command, args []string) error {
	config, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	if !config.Quiet {
		fmt.Printf("%s Extracting contacts from: %s\n", blue("INFO:"), magenta(args[0]))
	}

	result, err := newPipeline(config, log).Run(ctx, args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(result)
	}
	if !config.Quiet {
		displayExtraction(result)
	}
	return nil
}

func displayExtraction(result *models.SingleResult) {
	fmt.Println("\n--------------------------------")
	fmt.Printf("URL: %s\n", cyan(result.URL))
	fmt.Printf("Strategy: %s\n", result.Strategy)
	fmt.Printf("Duration: %dms\n", result.Duration.Milliseconds())
	fmt.Println("--------------------------------")

	r := result.Result
	if r.CompanyInfo.Name != "" {
		fmt.Printf("Company: %s\n", green(r.CompanyInfo.Name))
	}
	if r.CompanyInfo.Title != "" {
		fmt.Printf("Page Title: %s\n", r.CompanyInfo.Title)
	}
	if r.CompanyInfo.Description != "" {
		fmt.Printf("Description: %s\n", r.CompanyInfo.Description)
	}

	printList("Phones", r.Phones)
	printList("Emails", r.Emails)
	printList("Addresses", r.Addresses)

	profiles := r.SocialMedia.Profiles()
	if len(profiles) > 0 {
		platforms := make([]string, 0, len(profiles))
		for platform := range profiles {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)
		fmt.Printf("\nSocial Profiles:\n")
		for _, platform := range platforms {
			fmt.Printf("  %s: %s\n", platform, profiles[platform])
		}
	}
	if len(r.SocialMedia.WhatsApp) > 0 {
		fmt.Printf("\nWhatsApp:\n")
		for _, c := range r.SocialMedia.WhatsApp {
			fmt.Printf("  %s (%s)\n", c.Number, c.ChatLink)
		}
	}

	s := result.Summary
	fmt.Printf("\n%s %d phones, %d emails, %d addresses, %d social, %d whatsapp\n",
		green("FOUND:"), s.Phones, s.Emails, s.Addresses, s.Social, s.WhatsApp)
	fmt.Println("--------------------------------")
}

func printList(label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, v := range values {
		fmt.Printf("  %s\n", v)
	}
}

func runBulk(cmd *cobra.Command, args []string) error {
	config, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	urls, err := collectURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return models.ErrNoURLs
	}

	ctx, cancel := signalContext()
	defer cancel()

	if !config.Quiet {
		fmt.Printf("%s Processing %s URLs\n", blue("INFO:"), cyan(strconv.Itoa(len(urls))))
	}

	var bar *progressbar.ProgressBar
	if !config.Quiet && !config.NoProgress {
		bar = progressbar.NewOptions(len(urls),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(50),
			progressbar.OptionSetDescription("[cyan]Extracting contacts...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	p := newPipeline(config, log)
	var records []*models.BulkRecord
	last := time.Now()
	emit := func(ev models.BulkEvent) error {
		if ev.Type == models.EventStart {
			last = time.Now()
		}
		record := reporter.NewRecord(ev, time.Since(last))
		if record == nil {
			return nil
		}
		last = time.Now()
		records = append(records, record)
		if bar != nil {
			_ = bar.Add(1)
		}
		return nil
	}

	runErr := runBatches(ctx, p, batches(urls, config.MaxBulkURLs), config.BulkDelay, emit)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	rep := reporter.New(records, config.OutputDir)
	if err := rep.WriteResultsToFiles(); err != nil {
		return err
	}
	if err := rep.GenerateReport(filepath.Join(config.OutputDir, "report"), config.OutputFormat); err != nil {
		return err
	}

	succeeded, failed := rep.GetStats()
	if !config.Quiet {
		fmt.Println("\n--------------------------------")
		fmt.Printf("%s %d URLs succeeded\n", green("SUCCESS:"), succeeded)
		fmt.Printf("%s %d URLs failed\n", red("FAILED:"), failed)
		fmt.Printf("%s Results written to %s\n", blue("INFO:"), config.OutputDir)
		fmt.Println("--------------------------------")
	}

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%s Interrupted after %d of %d URLs\n", yellow("WARNING:"), len(records), len(urls))
		return nil
	}
	return runErr
}

// collectURLs treats a single existing file argument as a URL list and
// anything else as URLs given directly.
func collectURLs(args []string) ([]string, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return readURLsFromFile(args[0])
		}
	}
	urls := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			urls = append(urls, arg)
		}
	}
	return urls, nil
}

func readURLsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open url file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url file: %w", err)
	}
	return urls, nil
}

type bulkRunner interface {
	RunBulk(ctx context.Context, urls []string, emit pipeline.EmitFunc) error
}

// runBatches runs each batch in turn, keeping the bulk delay across batch
// boundaries as well as within a batch.
func runBatches(ctx context.Context, runner bulkRunner, chunks [][]string, delay time.Duration, emit pipeline.EmitFunc) error {
	for i, batch := range chunks {
		if i > 0 {
			if err := pipeline.Pause(ctx, delay); err != nil {
				return err
			}
		}
		if err := runner.RunBulk(ctx, batch, emit); err != nil {
			return err
		}
	}
	return nil
}

// batches splits urls into consecutive chunks of at most size.
func batches(urls []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var out [][]string
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		out = append(out, urls[start:end])
	}
	return out
}

func runSecurity(cmd *cobra.Command, args []string) error {
	config, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	if !config.Quiet {
		fmt.Printf("%s Checking security for %s\n", blue("INFO:"), cyan(args[0]))
	}

	result, err := security.New(config, security.WithLogger(log)).Scan(ctx, args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(result)
	}
	if !config.Quiet {
		displaySecurity(result)
	}
	return nil
}

func displaySecurity(result *models.SecurityScanResult) {
	fmt.Println("\n--------------------------------")
	fmt.Printf("Target: %s\n", cyan(result.TargetURL))
	if len(result.IPAddresses) > 0 {
		fmt.Printf("IP Addresses: %s\n", strings.Join(result.IPAddresses, ", "))
	}
	if result.StatusCode != 0 {
		fmt.Printf("Status Code: %d\n", result.StatusCode)
	}
	fmt.Printf("Score: %s (Grade %s)\n", gradeColor(result.Grade)(strconv.Itoa(result.SecurityScore)), gradeColor(result.Grade)(result.Grade))
	fmt.Println("--------------------------------")

	if result.TLS.Valid {
		fmt.Printf("TLS: %s (grade %s, %d days remaining)\n", green("Valid"), result.TLS.Grade, result.TLS.DaysRemaining)
		if result.TLS.Version != "" {
			fmt.Printf("TLS Version: %s\n", result.TLS.Version)
		}
		if result.TLS.Issuer != "" {
			fmt.Printf("Certificate Issuer: %s\n", result.TLS.Issuer)
			fmt.Printf("Certificate Expiry: %s\n", result.TLS.ValidTo.Format("2006-01-02"))
		}
	} else {
		fmt.Printf("TLS: %s (%s)\n", red("Invalid"), result.TLS.Reason)
	}

	if len(result.Technologies) > 0 {
		fmt.Printf("Technologies: %s\n", strings.Join(result.Technologies, ", "))
	}

	fmt.Printf("\nSecurity Headers:\n")
	for _, rule := range security.Checklist {
		check := result.HeaderAudit[rule.Name]
		if check.Present {
			fmt.Printf("  %s %s\n", green("[+]"), rule.Name)
		} else {
			fmt.Printf("  %s %s (%s)\n", red("[-]"), rule.Name, check.Severity)
		}
	}

	if len(result.Vulnerabilities) > 0 {
		fmt.Printf("\nFindings:\n")
		for _, v := range result.Vulnerabilities {
			fmt.Printf("  %s %s\n", severityColor(v.Severity)("["+v.Severity+"]"), v.Type)
		}
	}
	fmt.Println("--------------------------------")
}

func gradeColor(grade string) func(a ...interface{}) string {
	switch grade {
	case "A+", "A", "B":
		return green
	case "C", "D":
		return yellow
	default:
		return red
	}
}

func severityColor(severity string) func(a ...interface{}) string {
	switch severity {
	case models.SeverityCritical, models.SeverityHigh:
		return red
	case models.SeverityMedium:
		return yellow
	default:
		return blue
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServe(cmd *cobra.Command, args []string) error {
	config, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	scanner := security.New(config, security.WithLogger(log))
	e := server.New(newPipeline(config, log), scanner, log)

	if !config.Quiet {
		fmt.Printf("%s Listening on %s\n", blue("INFO:"), cyan(config.ListenAddr))
	}
	return server.Serve(ctx, e, config.ListenAddr, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("ERROR:"), err)
		os.Exit(1)
	}
}
