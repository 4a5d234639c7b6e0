package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	InteractionService_CreatePost_FullMethodName      = "/interaction.InteractionService/CreatePost"
	InteractionService_OpenFeed_FullMethodName        = "/interaction.InteractionService/OpenFeed"
	InteractionService_CloseFeed_FullMethodName       = "/interaction.InteractionService/CloseFeed"
	InteractionService_Tap_FullMethodName             = "/interaction.InteractionService/Tap"
	InteractionService_PressLike_FullMethodName       = "/interaction.InteractionService/PressLike"
	InteractionService_AddComment_FullMethodName      = "/interaction.InteractionService/AddComment"
	InteractionService_RefreshPost_FullMethodName     = "/interaction.InteractionService/RefreshPost"
	InteractionService_GetPostComments_FullMethodName = "/interaction.InteractionService/GetPostComments"
)

type InteractionServiceClient interface {
	CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error)
	OpenFeed(ctx context.Context, in *OpenFeedRequest, opts ...grpc.CallOption) (*OpenFeedResponse, error)
	CloseFeed(ctx context.Context, in *CloseFeedRequest, opts ...grpc.CallOption) (*Response, error)
	Tap(ctx context.Context, in *TapRequest, opts ...grpc.CallOption) (*TapResponse, error)
	PressLike(ctx context.Context, in *PressLikeRequest, opts ...grpc.CallOption) (*RecordResponse, error)
	AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*RecordResponse, error)
	RefreshPost(ctx context.Context, in *RefreshPostRequest, opts ...grpc.CallOption) (*RefreshPostResponse, error)
	GetPostComments(ctx context.Context, in *GetPostCommentsRequest, opts ...grpc.CallOption) (*CommentConnection, error)
}

type interactionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInteractionServiceClient(cc grpc.ClientConnInterface) InteractionServiceClient {
	return &interactionServiceClient{cc}
}

func (c *interactionServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *interactionServiceClient) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*PostResponse, error) {
	out := new(PostResponse)
	if err := c.invoke(ctx, InteractionService_CreatePost_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) OpenFeed(ctx context.Context, in *OpenFeedRequest, opts ...grpc.CallOption) (*OpenFeedResponse, error) {
	out := new(OpenFeedResponse)
	if err := c.invoke(ctx, InteractionService_OpenFeed_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) CloseFeed(ctx context.Context, in *CloseFeedRequest, opts ...grpc.CallOption) (*Response, error) {
	out := new(Response)
	if err := c.invoke(ctx, InteractionService_CloseFeed_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) Tap(ctx context.Context, in *TapRequest, opts ...grpc.CallOption) (*TapResponse, error) {
	out := new(TapResponse)
	if err := c.invoke(ctx, InteractionService_Tap_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) PressLike(ctx context.Context, in *PressLikeRequest, opts ...grpc.CallOption) (*RecordResponse, error) {
	out := new(RecordResponse)
	if err := c.invoke(ctx, InteractionService_PressLike_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*RecordResponse, error) {
	out := new(RecordResponse)
	if err := c.invoke(ctx, InteractionService_AddComment_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) RefreshPost(ctx context.Context, in *RefreshPostRequest, opts ...grpc.CallOption) (*RefreshPostResponse, error) {
	out := new(RefreshPostResponse)
	if err := c.invoke(ctx, InteractionService_RefreshPost_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interactionServiceClient) GetPostComments(ctx context.Context, in *GetPostCommentsRequest, opts ...grpc.CallOption) (*CommentConnection, error) {
	out := new(CommentConnection)
	if err := c.invoke(ctx, InteractionService_GetPostComments_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type InteractionServiceServer interface {
	CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error)
	OpenFeed(context.Context, *OpenFeedRequest) (*OpenFeedResponse, error)
	CloseFeed(context.Context, *CloseFeedRequest) (*Response, error)
	Tap(context.Context, *TapRequest) (*TapResponse, error)
	PressLike(context.Context, *PressLikeRequest) (*RecordResponse, error)
	AddComment(context.Context, *AddCommentRequest) (*RecordResponse, error)
	RefreshPost(context.Context, *RefreshPostRequest) (*RefreshPostResponse, error)
	GetPostComments(context.Context, *GetPostCommentsRequest) (*CommentConnection, error)
	mustEmbedUnimplementedInteractionServiceServer()
}

// UnimplementedInteractionServiceServer must be embedded by implementations.
type UnimplementedInteractionServiceServer struct{}

func (UnimplementedInteractionServiceServer) CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePost not implemented")
}
func (UnimplementedInteractionServiceServer) OpenFeed(context.Context, *OpenFeedRequest) (*OpenFeedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenFeed not implemented")
}
func (UnimplementedInteractionServiceServer) CloseFeed(context.Context, *CloseFeedRequest) (*Response, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseFeed not implemented")
}
func (UnimplementedInteractionServiceServer) Tap(context.Context, *TapRequest) (*TapResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Tap not implemented")
}
func (UnimplementedInteractionServiceServer) PressLike(context.Context, *PressLikeRequest) (*RecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PressLike not implemented")
}
func (UnimplementedInteractionServiceServer) AddComment(context.Context, *AddCommentRequest) (*RecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddComment not implemented")
}
func (UnimplementedInteractionServiceServer) RefreshPost(context.Context, *RefreshPostRequest) (*RefreshPostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshPost not implemented")
}
func (UnimplementedInteractionServiceServer) GetPostComments(context.Context, *GetPostCommentsRequest) (*CommentConnection, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPostComments not implemented")
}
func (UnimplementedInteractionServiceServer) mustEmbedUnimplementedInteractionServiceServer() {}

func RegisterInteractionServiceServer(s grpc.ServiceRegistrar, srv InteractionServiceServer) {
	s.RegisterService(&InteractionService_ServiceDesc, srv)
}

func unaryHandler[Req any](
	method string,
	call func(srv InteractionServiceServer, ctx context.Context, req *Req) (interface{}, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InteractionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(InteractionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InteractionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "interaction.InteractionService",
	HandlerType: (*InteractionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreatePost",
			Handler: unaryHandler(InteractionService_CreatePost_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *CreatePostRequest) (interface{}, error) {
					return srv.CreatePost(ctx, req)
				}),
		},
		{
			MethodName: "OpenFeed",
			Handler: unaryHandler(InteractionService_OpenFeed_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *OpenFeedRequest) (interface{}, error) {
					return srv.OpenFeed(ctx, req)
				}),
		},
		{
			MethodName: "CloseFeed",
			Handler: unaryHandler(InteractionService_CloseFeed_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *CloseFeedRequest) (interface{}, error) {
					return srv.CloseFeed(ctx, req)
				}),
		},
		{
			MethodName: "Tap",
			Handler: unaryHandler(InteractionService_Tap_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *TapRequest) (interface{}, error) {
					return srv.Tap(ctx, req)
				}),
		},
		{
			MethodName: "PressLike",
			Handler: unaryHandler(InteractionService_PressLike_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *PressLikeRequest) (interface{}, error) {
					return srv.PressLike(ctx, req)
				}),
		},
		{
			MethodName: "AddComment",
			Handler: unaryHandler(InteractionService_AddComment_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *AddCommentRequest) (interface{}, error) {
					return srv.AddComment(ctx, req)
				}),
		},
		{
			MethodName: "RefreshPost",
			Handler: unaryHandler(InteractionService_RefreshPost_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *RefreshPostRequest) (interface{}, error) {
					return srv.RefreshPost(ctx, req)
				}),
		},
		{
			MethodName: "GetPostComments",
			Handler: unaryHandler(InteractionService_GetPostComments_FullMethodName,
				func(srv InteractionServiceServer, ctx context.Context, req *GetPostCommentsRequest) (interface{}, error) {
					return srv.GetPostComments(ctx, req)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "interaction.proto",
}
