package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"certdesk/apperr"
	"certdesk/clients/appreciationClient"
	"certdesk/clients/certificateClient"
	"certdesk/cmd/certctl/app/option"
	"certdesk/controllers/chatController"
	"certdesk/controllers/formController"
	"certdesk/controllers/previewRenderer"
	"certdesk/logger"
	"certdesk/models"
	"certdesk/utils"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewCommand(version string) *cobra.Command {
	opt := &option.Option{}
	cmd := &cobra.Command{
		Use:          "certctl",
		Long:         "certctl issues, downloads and verifies certificates through the certificate services",
		Example:      figure.NewColorFigure("certctl", "isometric1", "green", true).String(),
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	opt.BindFlags(cmd.PersistentFlags())

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version and exit",
		Long:    "version subcommand will print version and exit",
		Example: "certctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "version:", version)
		},
	}

	cmd.AddCommand(versionCmd)
	cmd.AddCommand(newIssueCommand(opt))
	cmd.AddCommand(newPDFCommand(opt))
	cmd.AddCommand(newVerifyCommand(opt))
	cmd.AddCommand(newPreviewCommand())
	return cmd
}

type backends struct {
	log          *logger.Logger
	certificates *certificateClient.Client
	appreciation *appreciationClient.Client
}

func newBackends(cmd *cobra.Command, opt *option.Option) (*backends, error) {
	cfg, err := opt.GenerateConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := opt.Logger(cfg)
	if err != nil {
		return nil, err
	}

	certificates, err := certificateClient.New(log, certificateClient.Config{
		BaseURL: cfg.CertificateServiceURL,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}
	appreciation, err := appreciationClient.New(log, appreciationClient.Config{
		BaseURL: cfg.AppreciationServiceURL,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return &backends{log: log, certificates: certificates, appreciation: appreciation}, nil
}

func newIssueCommand(opt *option.Option) *cobra.Command {
	var (
		recipient      string
		course         string
		issueDate      string
		courseType     string
		noAppreciation bool
		download       bool
		outDir         string
	)
	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Issue a certificate",
		Long:    "Fetch an appreciation message for the course type, issue the certificate and print its preview",
		Example: `certctl issue --name "Ada Lovelace" --course Algorithms --date 2024-01-01 --type technical --download`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackends(cmd, opt)
			if err != nil {
				return err
			}
			defer b.log.Sync()

			include := !noAppreciation
			ct := models.CourseType(strings.ToLower(strings.TrimSpace(courseType)))
			form := formController.New(b.log, b.appreciation, b.certificates)
			if _, err := form.UpdateDraft(models.DraftPatch{
				RecipientName:       &recipient,
				CourseName:          &course,
				IssueDate:           &issueDate,
				CourseType:          &ct,
				IncludeAppreciation: &include,
			}); err != nil {
				return err
			}

			cert, err := form.Submit(cmd.Context())
			if err != nil {
				printFieldErrors(cmd.ErrOrStderr(), err)
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, previewRenderer.Render(cert).Text())
			if !download {
				return nil
			}
			body, name, err := form.DownloadPDF(cmd.Context())
			if err != nil {
				return err
			}
			path, err := utils.SaveDocument(body, outDir, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Saved", path)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&recipient, "name", "", "recipient name")
	fs.StringVar(&course, "course", "", "course name")
	fs.StringVar(&issueDate, "date", time.Now().Format(models.IssueDateLayout), "issue date (YYYY-MM-DD)")
	fs.StringVar(&courseType, "type", string(models.CourseTechnical), "course type: technical, academic or professional")
	fs.BoolVar(&noAppreciation, "no-appreciation", false, "issue without an appreciation message")
	fs.BoolVar(&download, "download", false, "save the certificate PDF after issuing")
	fs.StringVarP(&outDir, "out-dir", "o", ".", "directory the PDF is saved to")
	return cmd
}

func printFieldErrors(w io.Writer, err error) {
	fields := apperr.FieldsOf(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, fields[k])
	}
}

func newPDFCommand(opt *option.Option) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:     "pdf <certificate_id>",
		Short:   "Download a certificate PDF",
		Example: "certctl pdf c-1 -o ./certificates",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackends(cmd, opt)
			if err != nil {
				return err
			}
			defer b.log.Sync()

			id := strings.TrimSpace(args[0])
			body, err := b.certificates.FetchPDF(cmd.Context(), id)
			if err != nil {
				return err
			}
			path, err := utils.SaveDocument(body, outDir, models.CertificateFileName(id))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "directory the PDF is saved to")
	return cmd
}

func newVerifyCommand(opt *option.Option) *cobra.Command {
	var scan string
	cmd := &cobra.Command{
		Use:     "verify",
		Short:   "Chat with the verification bot",
		Long:    "Read messages from stdin, one per line, and print the verification bot replies. Type exit to leave.",
		Example: "certctl verify --scan c-1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackends(cmd, opt)
			if err != nil {
				return err
			}
			defer b.log.Sync()

			out := cmd.OutOrStdout()
			chat := chatController.New(b.log, b.certificates)
			for _, turn := range chat.Session().Transcript {
				fmt.Fprintln(out, "bot>", turn.Text)
			}

			if strings.TrimSpace(scan) != "" {
				reply, err := chat.Scan(cmd.Context(), scan)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "bot>", reply.Text)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				reply, err := chat.Send(cmd.Context(), line)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					continue
				}
				fmt.Fprintln(out, "bot>", reply.Text)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&scan, "scan", "", "certificate id read off a QR code to verify first")
	return cmd
}

func newPreviewCommand() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:     "preview <certificate.json>",
		Short:   "Render a certificate file",
		Long:    "Render a certificate record (JSON or YAML) as text, yaml, json or png",
		Example: "certctl preview certificate.json --format png -o preview.png",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// JSON is valid YAML, so one decoder covers both
			var cert models.Certificate
			if err := yaml.Unmarshal(raw, &cert); err != nil {
				return fmt.Errorf("parse certificate %s: %w", args[0], err)
			}
			doc := previewRenderer.Render(&cert)

			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "text":
				fmt.Fprint(w, doc.Text())
			case "yaml":
				body, err := yaml.Marshal(doc)
				if err != nil {
					return err
				}
				_, err = w.Write(body)
				return err
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "png":
				var buf bytes.Buffer
				if err := previewRenderer.EncodePNG(doc, &buf); err != nil {
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
					return err
				}
				fmt.Fprintln(w, "Saved", out)
			default:
				return fmt.Errorf("unknown format %q, expect one of text, yaml, json, png", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml, json or png")
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "file the png is written to")
	return cmd
}
