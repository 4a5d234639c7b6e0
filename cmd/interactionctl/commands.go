package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pb "interaction-service/pb"
	"interaction-service/pkg/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed development token for --user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if secret == "" || userID == "" {
			return fmt.Errorf("--secret and --user are required")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		signed, err := jwt.NewManager(secret, "interactionctl").Generate(userID, nil, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Open the viewer's feed, or load the next page of it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetInt32("first")
		after, _ := cmd.Flags().GetString("after")

		req := &pb.OpenFeedRequest{First: first}
		if after != "" {
			req.After = &after
		}
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.OpenFeed(ctx, req)
		})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the viewer's feed session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.CloseFeed(ctx, &pb.CloseFeedRequest{})
		})
	},
}

var tapCmd = &cobra.Command{
	Use:   "tap <post-id>",
	Short: "Tap a post; two taps inside the double tap window toggle the like",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := postArg(args)
		if err != nil {
			return err
		}
		double, _ := cmd.Flags().GetBool("double")

		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			now := time.Now().UnixMilli()
			resp, err := c.Tap(ctx, &pb.TapRequest{PostId: postID, TimestampMillis: now})
			if err != nil || !double {
				return resp, err
			}
			return c.Tap(ctx, &pb.TapRequest{PostId: postID, TimestampMillis: now + 100})
		})
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Toggle the like with the like button",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := postArg(args)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.PressLike(ctx, &pb.PressLikeRequest{PostId: postID})
		})
	},
}

var postCmd = &cobra.Command{
	Use:   "post <text...>",
	Short: "Publish a new post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.CreatePost(ctx, &pb.CreatePostRequest{Content: text})
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text...>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := postArg(args)
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.AddComment(ctx, &pb.AddCommentRequest{PostId: postID, Content: text})
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <post-id>",
	Short: "Reconcile a post with its stored state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := postArg(args)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.RefreshPost(ctx, &pb.RefreshPostRequest{PostId: postID})
		})
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <post-id>",
	Short: "List stored comments of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := postArg(args)
		if err != nil {
			return err
		}
		first, _ := cmd.Flags().GetInt32("first")
		after, _ := cmd.Flags().GetString("after")

		req := &pb.GetPostCommentsRequest{PostId: postID, First: first}
		if after != "" {
			req.After = &after
		}
		return withClient(cmd, func(ctx context.Context, c pb.InteractionServiceClient) (interface{}, error) {
			return c.GetPostComments(ctx, req)
		})
	},
}
