package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailkit/internal/credential"
	"github.com/nhle/mailkit/internal/credfile"
	"github.com/nhle/mailkit/internal/model"
	"github.com/nhle/mailkit/internal/prompt"
	"github.com/nhle/mailkit/internal/provider"
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage stored SMTP credentials",
}

var (
	credKeyName string
	credUser    string
	credSender  string
	credHost    string
	credPort    int
	credUseSSL  bool
	credUseTLS  bool
	credNoAuth  bool
	credProv    string
	credOutput  string
)

var credsCreateKeyCmd = &cobra.Command{
	Use:   "create-key",
	Short: "Store SMTP credentials in the system keyring",
	Long: `Store SMTP credentials under a named key in the system keyring.
The password is requested interactively and never accepted as a flag,
so it cannot leak through shell history or process listings.`,
	RunE: runCredsCreateKey,
}

var credsCreateFileCmd = &cobra.Command{
	Use:   "create-file",
	Short: "Write SMTP credentials to an unencrypted file",
	Long: `Write SMTP credentials to a plain YAML file. The file is protected
only by filesystem permissions; prefer create-key where a system
keyring is available, and keep credential files out of version control.`,
	RunE: runCredsCreateFile,
}

var credsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keyring credential entries",
	RunE:  runCredsList,
}

var credsDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key <key-name>",
	Short: "Remove a keyring credential entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredsDeleteKey,
}

func init() {
	for _, cmd := range []*cobra.Command{credsCreateKeyCmd, credsCreateFileCmd} {
		cmd.Flags().StringVar(&credUser, "user", "", "account login name")
		cmd.Flags().StringVar(&credSender, "sender", "", "display name for the From header")
		cmd.Flags().StringVar(&credHost, "host", "", "SMTP server hostname")
		cmd.Flags().IntVar(&credPort, "port", 0, "SMTP server port")
		cmd.Flags().BoolVar(&credUseSSL, "use-ssl", false, "connect with implicit TLS")
		cmd.Flags().StringVar(&credProv, "provider", "",
			"provider preset ("+strings.Join(provider.Names(), ", ")+")")
	}

	credsCreateKeyCmd.Flags().StringVar(&credKeyName, "key-name", "", "logical name for the keyring entry")

	credsCreateFileCmd.Flags().BoolVar(&credUseTLS, "use-tls", false, "upgrade the connection with STARTTLS")
	credsCreateFileCmd.Flags().BoolVar(&credNoAuth, "no-auth", false, "skip SMTP AUTH")
	credsCreateFileCmd.Flags().StringVar(&credOutput, "output", "",
		"file path (default: hidden host-scoped name in the working directory)")

	credsCmd.AddCommand(credsCreateKeyCmd, credsCreateFileCmd, credsListCmd, credsDeleteKeyCmd)
}

// applyPreset fills host, port, and flags from a provider preset when
// the corresponding flags were not given explicitly.
func applyPreset(cmd *cobra.Command) (provider.Preset, bool) {
	preset, ok := provider.Lookup(credProv)
	if !ok {
		return provider.Preset{}, false
	}

	if credHost == "" {
		credHost = preset.Server
	}
	if credPort == 0 {
		credPort = preset.Port
	}
	if !cmd.Flags().Changed("use-ssl") {
		credUseSSL = preset.UseSSL
	}
	return preset, true
}

func runCredsCreateKey(cmd *cobra.Command, _ []string) error {
	_, hasPreset := applyPreset(cmd)

	keyName := credKeyName
	if keyName == "" {
		keyName = credProv
	}
	if keyName == "" {
		return fmt.Errorf("either --key-name or --provider is required")
	}
	if credHost == "" || credPort == 0 {
		return fmt.Errorf("host and port are required (directly or via --provider)")
	}
	if !hasPreset && credProv != "" {
		return fmt.Errorf("unknown provider %q (known: %s)", credProv, strings.Join(provider.Names(), ", "))
	}

	keys, err := credential.OpenKeyStore()
	if err != nil {
		return err
	}

	identifier, err := keys.CreateKey(prompt.Interactive{}, credential.KeyID{
		KeyName: keyName,
		Sender:  credSender,
		Host:    credHost,
		Port:    credPort,
		UseSSL:  credUseSSL,
	}, credUser)
	if err != nil {
		return err
	}

	fmt.Printf("stored keyring entry %s\n", identifier)
	return nil
}

func runCredsCreateFile(cmd *cobra.Command, _ []string) error {
	preset, hasPreset := applyPreset(cmd)
	if hasPreset {
		if !cmd.Flags().Changed("use-tls") {
			credUseTLS = preset.UseTLS
		}
		if !cmd.Flags().Changed("no-auth") {
			credNoAuth = !preset.Authenticate
		}
	}

	if credHost == "" || credPort == 0 {
		return fmt.Errorf("host and port are required (directly or via --provider)")
	}

	password := ""
	if !credNoAuth {
		var err error
		password, err = prompt.Interactive{}.Secret(
			fmt.Sprintf("Password for %s@%s", credUser, credHost),
		)
		if err != nil {
			return err
		}
	}

	path, err := credfile.Write(model.CredentialRecord{
		Sender:       credSender,
		Host:         credHost,
		Port:         credPort,
		User:         credUser,
		Password:     password,
		UseSSL:       credUseSSL,
		UseTLS:       credUseTLS,
		Authenticate: !credNoAuth,
	}, credOutput)
	if err != nil {
		return err
	}

	fmt.Printf("wrote credentials file %s (unencrypted; owner-only permissions)\n", path)
	return nil
}

func runCredsList(_ *cobra.Command, _ []string) error {
	keys, err := credential.OpenKeyStore()
	if err != nil {
		return err
	}

	ids, err := keys.ListKeys(credential.CurrentVersion)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no keyring entries")
		return nil
	}

	for _, id := range ids {
		fmt.Printf(
			"%s\t%s\t%s:%s\tssl=%s\n",
			id.KeyName, id.Sender, id.Host,
			strconv.Itoa(id.Port), strconv.FormatBool(id.UseSSL),
		)
	}
	return nil
}

func runCredsDeleteKey(_ *cobra.Command, args []string) error {
	keys, err := credential.OpenKeyStore()
	if err != nil {
		return err
	}

	if err := keys.DeleteKey(args[0]); err != nil {
		return err
	}

	fmt.Printf("deleted keyring entry %q\n", args[0])
	return nil
}
