package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/collab-matcher/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a collaborator",
	Long: `Prints a bearer token whose subject is the collaborator ID. The API uses
the subject as the rater of POST /ratings submissions. Requires JWT_SECRET.`,
	RunE: runToken,
}

var (
	tokenCollaboratorID string
	tokenTTL            time.Duration
)

func init() {
	flags := tokenCmd.Flags()
	flags.StringVarP(&tokenCollaboratorID, "collaborator-id", "c", "", "Collaborator the token is issued to (required)")
	flags.DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to jwt_token_ttl from config, 24h)")
	_ = tokenCmd.MarkFlagRequired("collaborator-id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	ttl := time.Duration(cfg.JWTTokenTTL)
	if cmd.Flags().Changed("ttl") {
		ttl = tokenTTL
	}
	tokens, err := server.NewTokenService(cfg.JWTSecret, ttl)
	if err != nil {
		return fmt.Errorf("JWT_SECRET environment variable or jwt_secret config is required: %w", err)
	}

	token, err := tokens.GenerateToken(tokenCollaboratorID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
