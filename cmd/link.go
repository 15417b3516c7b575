package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	internalApp "github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/service"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type linkFlags struct {
	config        string
	sessionID     string
	email         string
	name          string
	date          string
	duration      int
	position      string
	interviewType string
	difficulty    string
	checkEmail    string
}

// linkReport is what `link validate` prints
type linkReport struct {
	service.FlowSnapshot
	WithinWindow     *bool `json:"withinWindow,omitempty"`
	IdentityVerified *bool `json:"identityVerified,omitempty"`
}

// checkLink runs the candidate flow for rawURL; a non-empty email is matched against the token
func checkLink(ctx context.Context, a *internalApp.App, rawURL, email string) linkReport {
	sessionID, token, ok := a.LinkService.ExtractLinkParams(rawURL)
	if !ok {
		bootstrapLogger.Warn("link has no session or token", zap.String("url", rawURL))
	}
	flow := a.NewFlow(sessionID, token)
	defer flow.Close()
	flow.Start(ctx)

	report := linkReport{FlowSnapshot: flow.Snapshot()}
	if report.Interview != nil {
		within := a.LinkService.IsWithinScheduledWindow(report.Interview.InterviewDate, a.Config().Link.PreJoin)
		report.WithinWindow = &within
	}
	if email != "" {
		verified := a.LinkService.VerifyCandidateIdentity(token, email)
		report.IdentityVerified = &verified
	}
	return report
}

// openApp 为命令行工具创建 App Container（不启动 HTTP 服务）
func openApp(configPath string) (*internalApp.App, error) {
	path, err := resolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg, _, err := internalApp.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := dao.NewDBEngine(*cfg.DaoConfig())
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	return internalApp.NewApp(cfg, bootstrapLogger, db)
}

func printJSON(v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

func init() {
	flags := new(linkFlags)

	linkCommand := &cobra.Command{
		Use:   "link",
		Short: "Generate or check interview links",
	}

	generateCommand := &cobra.Command{
		Use:   "generate --email x --name y --date 2026-01-02T15:04:05Z --position z",
		Short: "Generate an interview link",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse(time.RFC3339, flags.date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			a, err := openApp(flags.config)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			link, url, err := a.LinkService.Generate(cmd.Context(), domain.GenerateLinkParams{
				SessionID:      flags.sessionID,
				CandidateEmail: flags.email,
				CandidateName:  flags.name,
				InterviewDate:  date,
				Duration:       flags.duration,
				Position:       flags.position,
				InterviewType:  domain.InterviewType(flags.interviewType),
				Difficulty:     domain.Difficulty(flags.difficulty),
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"sessionId": link.SessionID,
				"url":       url,
				"expiresAt": link.ExpiresAt,
			})
		},
	}

	validateCommand := &cobra.Command{
		Use:   "validate <url>",
		Short: "Run the candidate page flow against a link and print the resulting state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags.config)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			return printJSON(checkLink(cmd.Context(), a, args[0], flags.checkEmail))
		},
	}

	linkCommand.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "config file")

	fs := generateCommand.Flags()
	fs.StringVar(&flags.sessionID, "session", "", "session id, generated when empty")
	fs.StringVar(&flags.email, "email", "", "candidate email")
	fs.StringVar(&flags.name, "name", "", "candidate name")
	fs.StringVar(&flags.date, "date", "", "interview date, RFC3339")
	fs.IntVar(&flags.duration, "duration", 0, "interview length in minutes")
	fs.StringVar(&flags.position, "position", "", "position")
	fs.StringVar(&flags.interviewType, "type", "", "technical | behavioral | cultural | mixed")
	fs.StringVar(&flags.difficulty, "difficulty", "", "junior | middle | senior")
	_ = generateCommand.MarkFlagRequired("email")
	_ = generateCommand.MarkFlagRequired("name")
	_ = generateCommand.MarkFlagRequired("date")
	_ = generateCommand.MarkFlagRequired("position")

	validateCommand.Flags().StringVar(&flags.checkEmail, "email", "", "check the link was issued to this candidate email")

	linkCommand.AddCommand(generateCommand, validateCommand)
	rootCmd.AddCommand(linkCommand)
}
