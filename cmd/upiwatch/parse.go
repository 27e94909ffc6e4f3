package main

import (
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hrejuh/upiwatch/internal/common"
	"github.com/hrejuh/upiwatch/internal/model"
	"github.com/hrejuh/upiwatch/internal/parser"
	"github.com/hrejuh/upiwatch/internal/template"
	"github.com/hrejuh/upiwatch/internal/validator"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse payment emails without persisting anything",
		Long: `Run the template engine and validator against saved email files and
print what they extract. Useful for tuning templates before letting the
mailbox poller loose on real mail.`,
		RunE: runParse,
	}

	cmd.Flags().String("dir", "", "parse every .eml file in a directory")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	paths := append([]string{}, args...)
	if dir != "" {
		found, err := emailFilesIn(dir)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return common.NewUserError("no email files given; pass file paths or --dir", nil)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return common.NewUserError("failed to open database", err)
	}
	defer func() { _ = store.Close() }()

	registry, err := template.Load(ctx, store)
	if err != nil {
		return err
	}
	cfg := validatorConfig()
	p := parser.New(registry, cfg.ReceiverToken)
	v := validator.New(cfg)

	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Parsing emails..."),
		)
	}

	matched := 0
	for _, path := range paths {
		email, err := loadEmailFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			continue
		}

		payment := p.Parse(email)
		if payment == nil {
			fmt.Printf("%s: no template matched\n", path)
		} else {
			matched++
			printPayment(path, payment, v.Validate(*payment))
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	fmt.Printf("\n%d/%d emails matched a template\n", matched, len(paths))
	return nil
}

// emailFilesIn lists .eml and .txt files in a directory, sorted by name.
func emailFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, common.NewUserError("failed to read directory", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".eml" || ext == ".txt" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// loadEmailFile reads an RFC 822 message from disk. The Date header becomes
// ReceivedAt; files without one get the current time so freshness checks
// behave sensibly during template tuning.
func loadEmailFile(path string) (model.EmailMessage, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return model.EmailMessage{}, err
	}
	defer func() { _ = f.Close() }()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return model.EmailMessage{}, fmt.Errorf("not a valid email message: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return model.EmailMessage{}, fmt.Errorf("failed to read message body: %w", err)
	}

	receivedAt := time.Now()
	if date, dateErr := msg.Header.Date(); dateErr == nil {
		receivedAt = date
	}

	return model.EmailMessage{
		ID:          path,
		FromAddress: msg.Header.Get("From"),
		Subject:     msg.Header.Get("Subject"),
		Body:        string(body),
		ReceivedAt:  receivedAt,
	}, nil
}

func printPayment(path string, payment *model.ParsedPayment, result model.ValidationResult) {
	fmt.Printf("%s:\n", path)
	fmt.Printf("  bank:      %s\n", payment.BankName)
	fmt.Printf("  amount:    %.2f\n", payment.Amount)
	fmt.Printf("  reference: %s\n", payment.UPIReference)
	fmt.Printf("  sender:    %s\n", payment.SenderID)
	fmt.Printf("  receiver:  %s\n", payment.ReceiverID)
	if payment.TransactionID != nil {
		fmt.Printf("  txn id:    %s\n", *payment.TransactionID)
	}
	if result.IsValid {
		fmt.Printf("  valid:     yes\n")
	} else {
		fmt.Printf("  valid:     no\n")
		for _, msg := range result.Errors {
			fmt.Printf("    - %s\n", msg)
		}
	}
}
