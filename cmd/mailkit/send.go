package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailkit/internal/message"
	"github.com/nhle/mailkit/internal/model"
	"github.com/nhle/mailkit/internal/resolver"
	"github.com/nhle/mailkit/internal/send"
	"github.com/nhle/mailkit/internal/store"
)

var (
	sendTo      []string
	sendSubject string
	sendBody    string
	sendHeader  string
	sendFooter  string
	sendAttach  []string

	sendCredsFile string
	sendProvider  string
	sendKeyName   string
	sendSender    string
	sendHost      string
	sendPort      int
	sendUser      string
	sendPassword  string
	sendUseSSL    string
	sendUseTLS    string
	sendAuth      string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Render a markdown message and send it over SMTP",
	Long: `Render the markdown body (from --body, or stdin when omitted) into a
multipart HTML message and dispatch it. Credentials resolve from the
first applicable source: --creds-file, explicit --host/--user/--password
flags (optionally completed by --provider), or a keyring entry named by
--key-name or --provider.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringSliceVar(&sendTo, "to", nil, "recipient address (repeatable)")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "message subject")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "markdown file for the message body (default: stdin)")
	sendCmd.Flags().StringVar(&sendHeader, "header", "", "markdown block rendered above the body")
	sendCmd.Flags().StringVar(&sendFooter, "footer", "", "markdown block rendered below the body")
	sendCmd.Flags().StringSliceVar(&sendAttach, "attach", nil, "file to attach (repeatable)")

	sendCmd.Flags().StringVar(&sendCredsFile, "creds-file", "", "path to a credentials file")
	sendCmd.Flags().StringVar(&sendProvider, "provider", "", "provider preset or keyring key name")
	sendCmd.Flags().StringVar(&sendKeyName, "key-name", "", "keyring entry to resolve")
	sendCmd.Flags().StringVar(&sendSender, "sender", "", "display name for the From header")
	sendCmd.Flags().StringVar(&sendHost, "host", "", "SMTP server hostname")
	sendCmd.Flags().IntVar(&sendPort, "port", 0, "SMTP server port")
	sendCmd.Flags().StringVar(&sendUser, "user", "", "account login name")
	sendCmd.Flags().StringVar(&sendPassword, "password", "", "account password (prefer creds-file or keyring)")
	sendCmd.Flags().StringVar(&sendUseSSL, "use-ssl", "", "connect with implicit TLS (true/false)")
	sendCmd.Flags().StringVar(&sendUseTLS, "use-tls", "", "upgrade with STARTTLS (true/false)")
	sendCmd.Flags().StringVar(&sendAuth, "authenticate", "", "perform SMTP AUTH (true/false)")

	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("subject")
}

func runSend(cmd *cobra.Command, _ []string) error {
	body, err := readBody(cmd.InOrStdin())
	if err != nil {
		return err
	}

	r := &resolver.Resolver{}
	creds, err := r.Resolve(resolver.Options{
		CredsFile:    sendCredsFile,
		Provider:     sendProvider,
		KeyName:      sendKeyName,
		Sender:       sendSender,
		Host:         sendHost,
		Port:         sendPort,
		User:         sendUser,
		Password:     sendPassword,
		UseSSL:       sendUseSSL,
		UseTLS:       sendUseTLS,
		Authenticate: sendAuth,
	})
	if err != nil {
		return err
	}

	msg := &message.Message{
		Subject:     sendSubject,
		To:          sendTo,
		Body:        body,
		Header:      sendHeader,
		Footer:      sendFooter,
		Attachments: sendAttach,
	}

	ctx := context.Background()
	sender := &send.SMTPSender{}
	sendErr := sender.Send(ctx, msg, creds)

	recordDispatch(ctx, msg, creds, sendErr)

	if sendErr != nil {
		return fmt.Errorf("sending to %s: %w", creds, sendErr)
	}

	fmt.Printf("sent %q to %d recipient(s) via %s\n", sendSubject, len(sendTo), creds.Host)
	return nil
}

// readBody loads the markdown body from --body or stdin.
func readBody(stdin io.Reader) (string, error) {
	if sendBody != "" {
		data, err := os.ReadFile(sendBody)
		if err != nil {
			return "", fmt.Errorf("reading body file %s: %w", sendBody, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading body from stdin: %w", err)
	}
	return string(data), nil
}

// recordDispatch appends the attempt to the local send log. Logging
// failures never mask the send result.
func recordDispatch(
	ctx context.Context,
	msg *message.Message,
	creds model.CredentialRecord,
	sendErr error,
) {
	s, err := store.NewSQLiteStore(store.DefaultDBPath())
	if err != nil {
		log.Printf("opening send log: %v", err)
		return
	}
	defer s.Close()

	d := model.Dispatch{
		Subject:    msg.Subject,
		FromAddr:   msg.From,
		Recipients: msg.To,
		Host:       creds.Host,
		Status:     model.DispatchSent,
		SentAt:     time.Now(),
	}
	if sendErr != nil {
		d.Status = model.DispatchFailed
		d.Detail = sendErr.Error()
	}

	if err := s.RecordDispatch(ctx, d); err != nil {
		log.Printf("recording dispatch: %v", err)
	}
}
