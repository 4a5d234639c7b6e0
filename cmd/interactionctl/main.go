package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	pb "interaction-service/pb"
	"interaction-service/pkg/jwt"
)

var (
	// Global flags
	addr    string
	token   string
	secret  string
	userID  string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "interactionctl",
	Short: "Drive the interaction service from the command line",
	Long: `interactionctl talks to a running interaction service over gRPC.

A feed must be opened before posts in it can be tapped, liked or commented on.
The server keeps the session between invocations, so two "tap" calls within
the double tap window toggle the like just as two taps in the app would.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewDevelopmentConfig()
		if !verbose {
			config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", envOr("INTERACTION_ADDR", "localhost:50060"), "Interaction service address")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("INTERACTION_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Sign a token locally with this secret when --token is empty")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Viewer id for locally signed tokens")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per call timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	feedCmd.Flags().Int32("first", 0, "Page size (server default when 0)")
	feedCmd.Flags().String("after", "", "Cursor to continue from")
	tapCmd.Flags().Bool("double", false, "Send two taps 100ms apart")
	commentsCmd.Flags().Int32("first", 10, "Page size")
	commentsCmd.Flags().String("after", "", "Cursor to continue from")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(tapCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(commentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withClient dials the service and runs fn with an authenticated context.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client pb.InteractionServiceClient) (interface{}, error)) error {
	bearer, err := resolveToken()
	if err != nil {
		return err
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if bearer != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+bearer)
	}

	logger.Debug("calling interaction service", zap.String("addr", addr), zap.String("command", cmd.Name()))
	out, err := fn(ctx, pb.NewInteractionServiceClient(conn))
	if err != nil {
		return err
	}
	return printJSON(cmd, out)
}

func resolveToken() (string, error) {
	if token != "" || secret == "" {
		return token, nil
	}
	if userID == "" {
		return "", fmt.Errorf("--user is required to sign a token")
	}
	return jwt.NewManager(secret, "interactionctl").Generate(userID, nil, timeout+time.Minute)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func postArg(args []string) (string, error) {
	if _, err := uuid.Parse(args[0]); err != nil {
		return "", fmt.Errorf("invalid post id %q", args[0])
	}
	return args[0], nil
}
