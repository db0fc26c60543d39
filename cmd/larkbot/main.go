package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/larkbot/internal/config"
	"github.com/stellarlinkco/larkbot/internal/cron"
	"github.com/stellarlinkco/larkbot/pkg/lark"
)

// Client is the bot surface the commands talk to (allows mocking in tests)
type Client interface {
	Post(ctx context.Context, msg lark.Message) (map[string]any, error)
	SendText(ctx context.Context, text string) (map[string]any, error)
	SendRich(ctx context.Context, content any) (map[string]any, error)
	SendCard(ctx context.Context, card any) (map[string]any, error)
	SendImage(ctx context.Context, imageKey string) (map[string]any, error)
	SendImageFile(ctx context.Context, in lark.Input) (map[string]any, error)
	SendImageURL(ctx context.Context, url string) (map[string]any, error)
	ShareChat(ctx context.Context, chatID string) (map[string]any, error)
	ShareUser(ctx context.Context, userID string) (map[string]any, error)
	UploadFile(ctx context.Context, in lark.Input) (string, error)
}

// ClientFactory creates a Client from loaded config
type ClientFactory func(cfg *config.Config) (Client, error)

// DefaultClientFactory builds the real webhook client
func DefaultClientFactory(cfg *config.Config) (Client, error) {
	if cfg.Bot.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL not set. Run 'larkbot onboard' or set LARKBOT_WEBHOOK_URL")
	}
	return lark.New(lark.Config{
		WebhookURL: cfg.Bot.WebhookURL,
		Secret:     cfg.Bot.Secret,
		AppID:      cfg.Bot.AppID,
		AppSecret:  cfg.Bot.AppSecret,
	})
}

// Options for running commands with custom dependencies
type Options struct {
	ClientFactory ClientFactory
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer
}

func (o Options) fill() Options {
	if o.ClientFactory == nil {
		o.ClientFactory = DefaultClientFactory
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

var rootCmd = &cobra.Command{
	Use:   "larkbot",
	Short: "larkbot - send messages through a Feishu/Lark custom bot webhook",
}

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a text message",
	RunE:  runSend,
}

var richCmd = &cobra.Command{
	Use:   "rich",
	Short: "Send a rich post message from JSON lines (--file or stdin)",
	RunE:  runRich,
}

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Send an interactive card from JSON (--file or stdin)",
	RunE:  runCard,
}

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Upload an image and send it (--path, --url or --base64)",
	RunE:  runImage,
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload an image and print its image key",
	RunE:  runUpload,
}

var shareChatCmd = &cobra.Command{
	Use:   "share-chat <chat_id>",
	Short: "Send a share-chat message",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareChat,
}

var shareUserCmd = &cobra.Command{
	Use:   "share-user <user_id>",
	Short: "Send a share-user message",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareUser,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled sends",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled text send",
	RunE:  runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled sends",
	RunE:  runScheduleList,
}

var scheduleRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a scheduled send",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRm,
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler until interrupted",
	RunE:  runScheduleRun,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show larkbot status",
	RunE:  runStatus,
}

var (
	messageFlag     string
	titleFlag       string
	fileFlag        string
	pathFlag        string
	urlFlag         string
	base64Flag      string
	contentTypeFlag string
	cronExprFlag    string
	everyFlag       time.Duration
	atFlag          string
	nameFlag        string
	onceFlag        bool
)

func init() {
	sendCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Message text to send")

	richCmd.Flags().StringVar(&titleFlag, "title", "", "Post title")
	richCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with post content lines")

	cardCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "JSON file with the card body")

	for _, cmd := range []*cobra.Command{imageCmd, uploadCmd} {
		cmd.Flags().StringVar(&pathFlag, "path", "", "Image file path")
		cmd.Flags().StringVar(&urlFlag, "url", "", "Image URL to download")
		cmd.Flags().StringVar(&base64Flag, "base64", "", "Base64-encoded image bytes")
		cmd.Flags().StringVar(&contentTypeFlag, "content-type", "", "MIME type for --base64")
	}

	scheduleAddCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Job name")
	scheduleAddCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Message text to send")
	scheduleAddCmd.Flags().StringVar(&cronExprFlag, "cron", "", "Cron expression (six-field, with seconds)")
	scheduleAddCmd.Flags().DurationVar(&everyFlag, "every", 0, "Repeat interval (e.g. 30m)")
	scheduleAddCmd.Flags().StringVar(&atFlag, "at", "", "One-shot time (RFC3339)")
	scheduleAddCmd.Flags().BoolVar(&onceFlag, "once", false, "Delete the job after it runs")

	scheduleCmd.AddCommand(scheduleAddCmd, scheduleListCmd, scheduleRmCmd, scheduleRunCmd)
	rootCmd.AddCommand(sendCmd, richCmd, cardCmd, imageCmd, uploadCmd,
		shareChatCmd, shareUserCmd, scheduleCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient(opts Options) (Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return opts.ClientFactory(cfg)
}

// printResponse renders the webhook response for the user. Remote failures
// come back inside the body, not as errors, so the body is always shown.
func printResponse(w io.Writer, result map[string]any) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", result)
		return
	}
	fmt.Fprintln(w, string(data))
}

func runSend(cmd *cobra.Command, args []string) error {
	return sendWithOptions(Options{}, args)
}

func sendWithOptions(opts Options, args []string) error {
	opts = opts.fill()

	text := messageFlag
	if text == "" {
		text = strings.Join(args, " ")
	}
	if text == "" {
		return fmt.Errorf("no message: pass text as arguments or with -m")
	}

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	result, err := client.SendText(context.Background(), text)
	if err != nil {
		return err
	}
	printResponse(opts.Stdout, result)
	return nil
}

func runRich(cmd *cobra.Command, args []string) error {
	return richWithOptions(Options{})
}

func richWithOptions(opts Options) error {
	opts = opts.fill()

	data, err := readInput(opts.Stdin, fileFlag)
	if err != nil {
		return err
	}

	var lines [][]lark.PostElement
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("parse post content: %w", err)
	}

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	result, err := client.SendRich(context.Background(), lark.RichPost(titleFlag, lines...))
	if err != nil {
		return err
	}
	printResponse(opts.Stdout, result)
	return nil
}

func runCard(cmd *cobra.Command, args []string) error {
	return cardWithOptions(Options{})
}

func cardWithOptions(opts Options) error {
	opts = opts.fill()

	data, err := readInput(opts.Stdin, fileFlag)
	if err != nil {
		return err
	}

	var card map[string]any
	if err := json.Unmarshal(data, &card); err != nil {
		return fmt.Errorf("parse card: %w", err)
	}

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	result, err := client.SendCard(context.Background(), card)
	if err != nil {
		return err
	}
	printResponse(opts.Stdout, result)
	return nil
}

func runImage(cmd *cobra.Command, args []string) error {
	return imageWithOptions(Options{})
}

func imageWithOptions(opts Options) error {
	opts = opts.fill()

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var result map[string]any
	switch {
	case urlFlag != "":
		result, err = client.SendImageURL(ctx, urlFlag)
	default:
		in, inErr := imageInput()
		if inErr != nil {
			return inErr
		}
		result, err = client.SendImageFile(ctx, in)
	}
	if err != nil {
		return err
	}
	printResponse(opts.Stdout, result)
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	return uploadWithOptions(Options{})
}

func uploadWithOptions(opts Options) error {
	opts = opts.fill()

	in, err := imageInput()
	if err != nil {
		return err
	}

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	key, err := client.UploadFile(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.Stdout, key)
	return nil
}

// imageInput picks the input shape from the --path / --base64 flags.
func imageInput() (lark.Input, error) {
	switch {
	case pathFlag != "":
		return lark.FileInput(pathFlag), nil
	case base64Flag != "":
		if contentTypeFlag == "" {
			return lark.Input{}, fmt.Errorf("--base64 requires --content-type")
		}
		return lark.Base64Input(base64Flag, contentTypeFlag), nil
	default:
		return lark.Input{}, fmt.Errorf("no image: pass --path, --url or --base64")
	}
}

func runShareChat(cmd *cobra.Command, args []string) error {
	return shareWithOptions(Options{}, "chat", args[0])
}

func runShareUser(cmd *cobra.Command, args []string) error {
	return shareWithOptions(Options{}, "user", args[0])
}

func shareWithOptions(opts Options, kind, id string) error {
	opts = opts.fill()

	client, err := newClient(opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var result map[string]any
	if kind == "chat" {
		result, err = client.ShareChat(ctx, id)
	} else {
		result, err = client.ShareUser(ctx, id)
	}
	if err != nil {
		return err
	}
	printResponse(opts.Stdout, result)
	return nil
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if messageFlag == "" {
		return fmt.Errorf("no message: pass text with -m")
	}

	schedule, err := parseSchedule()
	if err != nil {
		return err
	}

	name := nameFlag
	if name == "" {
		name = fmt.Sprintf("send-%d", time.Now().Unix())
	}

	svc := cron.NewService(cfg.Schedule.StorePath)
	if err := svc.Start(context.Background()); err != nil {
		return err
	}
	defer svc.Stop()

	job := cron.NewJob(name, schedule, cron.Payload{Message: messageFlag})
	job.DeleteAfterRun = onceFlag
	added, err := svc.Add(job)
	if err != nil {
		return err
	}

	fmt.Printf("Added job %s (%s)\n", added.Name, added.ID)
	return nil
}

func parseSchedule() (cron.Schedule, error) {
	set := 0
	for _, ok := range []bool{cronExprFlag != "", everyFlag > 0, atFlag != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return cron.Schedule{}, fmt.Errorf("pass exactly one of --cron, --every or --at")
	}

	switch {
	case cronExprFlag != "":
		return cron.Schedule{Kind: "cron", Expr: cronExprFlag}, nil
	case everyFlag > 0:
		return cron.Schedule{Kind: "every", EveryMs: everyFlag.Milliseconds()}, nil
	default:
		at, err := time.Parse(time.RFC3339, atFlag)
		if err != nil {
			return cron.Schedule{}, fmt.Errorf("parse --at: %w", err)
		}
		return cron.Schedule{Kind: "at", AtMs: at.UnixMilli()}, nil
	}
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc := cron.NewService(cfg.Schedule.StorePath)
	if err := svc.Start(context.Background()); err != nil {
		return err
	}
	defer svc.Stop()

	jobs := svc.ListJobs()
	if len(jobs) == 0 {
		fmt.Println("No scheduled sends")
		return nil
	}
	for _, job := range jobs {
		status := "enabled"
		if !job.Enabled {
			status = "disabled"
		}
		fmt.Printf("%s  %-20s %-8s %s\n", job.ID, job.Name, status, scheduleDisplay(job.Schedule))
	}
	return nil
}

func scheduleDisplay(s cron.Schedule) string {
	switch s.Kind {
	case "cron":
		return "cron " + s.Expr
	case "every":
		return "every " + (time.Duration(s.EveryMs) * time.Millisecond).String()
	case "at":
		return "at " + time.UnixMilli(s.AtMs).Format(time.RFC3339)
	}
	return s.Kind
}

func runScheduleRm(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc := cron.NewService(cfg.Schedule.StorePath)
	if err := svc.Start(context.Background()); err != nil {
		return err
	}
	defer svc.Stop()

	if !svc.RemoveJob(args[0]) {
		return fmt.Errorf("job %s not found", args[0])
	}
	fmt.Printf("Removed job %s\n", args[0])
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	return scheduleRunWithOptions(Options{})
}

func scheduleRunWithOptions(opts Options) error {
	opts = opts.fill()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := opts.ClientFactory(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := cron.NewService(cfg.Schedule.StorePath)
	svc.OnJob = func(job cron.Job) (map[string]any, error) {
		return client.SendText(context.Background(), job.Payload.Message)
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(opts.Stdout, "Scheduler running; press Ctrl-C to stop")
	<-ctx.Done()
	svc.Stop()
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your webhook URL\n", cfgPath)
	fmt.Println("  2. Or set LARKBOT_WEBHOOK_URL environment variable")
	fmt.Println("  3. Run 'larkbot send \"Hello\"' to test")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	if cfg.Bot.WebhookURL != "" {
		fmt.Printf("Webhook: %s\n", cfg.Bot.WebhookURL)
	} else {
		fmt.Println("Webhook: not set (run 'larkbot onboard')")
	}
	fmt.Printf("Signing: %s\n", maskedDisplay(cfg.Bot.Secret))
	if cfg.Bot.AppID != "" {
		fmt.Printf("App: %s (secret %s)\n", cfg.Bot.AppID, maskedDisplay(cfg.Bot.AppSecret))
	} else {
		fmt.Println("App: not set (image upload unavailable)")
	}
	fmt.Printf("Job store: %s\n", cfg.Schedule.StorePath)

	return nil
}

func maskedDisplay(secret string) string {
	switch {
	case secret == "":
		return "not set"
	case len(secret) > 8:
		return secret[:4] + "..." + secret[len(secret)-4:]
	default:
		return "set"
	}
}

// readInput reads JSON from the given file, or stdin when no file is set.
func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
