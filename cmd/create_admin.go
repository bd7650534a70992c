package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frahmantamala/pass-management/internal/auth"
	"github.com/frahmantamala/pass-management/internal/core/events"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var adminDTO auth.RegisterDTO

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an ADMIN account. Administrators cannot be created over HTTP.
The password is read from ADMIN_PASSWORD, otherwise prompted for on the terminal
or read as one line from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readAdminPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		dto := adminDTO
		dto.Password = password

		deps, err := initializeDependencies(configPath)
		if err != nil {
			return err
		}
		defer deps.DB.Close()

		svcs := NewServices(deps, events.Sync)
		u, err := svcs.Auth.ProvisionAdmin(context.Background(), dto)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminDTO.Username, "username", "u", "", "login name")
	createAdminCmd.Flags().StringVar(&adminDTO.FullName, "full-name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminDTO.Email, "email", "", "contact email")
	createAdminCmd.Flags().StringVar(&adminDTO.Department, "department", "", "department")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("full-name")
	_ = createAdminCmd.MarkFlagRequired("email")
}

func readAdminPassword(in io.Reader, prompt io.Writer) (string, error) {
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		return pw, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprint(prompt, "Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
