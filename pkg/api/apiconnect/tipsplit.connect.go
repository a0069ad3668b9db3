// Package apiconnect wires the api messages to Connect handlers and clients
// for tipsplit.v1.TipService.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tipsplit/pkg/api"
)

// TipServiceName is the fully-qualified name of the TipService service.
const TipServiceName = "tipsplit.v1.TipService"

// Procedure paths of every TipService RPC.
const (
	TipServiceCalculateProcedure    = "/tipsplit.v1.TipService/Calculate"
	TipServiceListPresetsProcedure  = "/tipsplit.v1.TipService/ListPresets"
	TipServiceStartSessionProcedure = "/tipsplit.v1.TipService/StartSession"
	TipServiceEndSessionProcedure   = "/tipsplit.v1.TipService/EndSession"
	TipServiceApplyEventProcedure   = "/tipsplit.v1.TipService/ApplyEvent"
	TipServiceGetViewProcedure      = "/tipsplit.v1.TipService/GetView"
	TipServiceSaveSplitProcedure    = "/tipsplit.v1.TipService/SaveSplit"
	TipServiceListSplitsProcedure   = "/tipsplit.v1.TipService/ListSplits"
	TipServiceGetSplitProcedure     = "/tipsplit.v1.TipService/GetSplit"
	TipServiceDeleteSplitProcedure  = "/tipsplit.v1.TipService/DeleteSplit"
)

// SessionProcedures are the procedures that act on the caller's form
// session and therefore require a bearer token.
var SessionProcedures = map[string]bool{
	TipServiceEndSessionProcedure: true,
	TipServiceApplyEventProcedure: true,
	TipServiceGetViewProcedure:    true,
	TipServiceSaveSplitProcedure:  true,
}

// TipServiceHandler is implemented by the server.
type TipServiceHandler interface {
	Calculate(context.Context, *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error)
	ListPresets(context.Context, *connect.Request[api.ListPresetsRequest]) (*connect.Response[api.ListPresetsResponse], error)
	StartSession(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error)
	EndSession(context.Context, *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error)
	ApplyEvent(context.Context, *connect.Request[api.ApplyEventRequest]) (*connect.Response[api.ApplyEventResponse], error)
	GetView(context.Context, *connect.Request[api.GetViewRequest]) (*connect.Response[api.GetViewResponse], error)
	SaveSplit(context.Context, *connect.Request[api.SaveSplitRequest]) (*connect.Response[api.SaveSplitResponse], error)
	ListSplits(context.Context, *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error)
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error)
	DeleteSplit(context.Context, *connect.Request[api.DeleteSplitRequest]) (*connect.Response[api.DeleteSplitResponse], error)
}

// NewTipServiceHandler builds an HTTP handler for every TipService procedure.
// It returns the path prefix to mount the handler on.
func NewTipServiceHandler(svc TipServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)

	handlers := map[string]http.Handler{
		TipServiceCalculateProcedure:    connect.NewUnaryHandler(TipServiceCalculateProcedure, svc.Calculate, opts...),
		TipServiceListPresetsProcedure:  connect.NewUnaryHandler(TipServiceListPresetsProcedure, svc.ListPresets, opts...),
		TipServiceStartSessionProcedure: connect.NewUnaryHandler(TipServiceStartSessionProcedure, svc.StartSession, opts...),
		TipServiceEndSessionProcedure:   connect.NewUnaryHandler(TipServiceEndSessionProcedure, svc.EndSession, opts...),
		TipServiceApplyEventProcedure:   connect.NewUnaryHandler(TipServiceApplyEventProcedure, svc.ApplyEvent, opts...),
		TipServiceGetViewProcedure:      connect.NewUnaryHandler(TipServiceGetViewProcedure, svc.GetView, opts...),
		TipServiceSaveSplitProcedure:    connect.NewUnaryHandler(TipServiceSaveSplitProcedure, svc.SaveSplit, opts...),
		TipServiceListSplitsProcedure:   connect.NewUnaryHandler(TipServiceListSplitsProcedure, svc.ListSplits, opts...),
		TipServiceGetSplitProcedure:     connect.NewUnaryHandler(TipServiceGetSplitProcedure, svc.GetSplit, opts...),
		TipServiceDeleteSplitProcedure:  connect.NewUnaryHandler(TipServiceDeleteSplitProcedure, svc.DeleteSplit, opts...),
	}

	return "/" + TipServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// TipServiceClient is a client for tipsplit.v1.TipService.
type TipServiceClient interface {
	Calculate(context.Context, *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error)
	ListPresets(context.Context, *connect.Request[api.ListPresetsRequest]) (*connect.Response[api.ListPresetsResponse], error)
	StartSession(context.Context, *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error)
	EndSession(context.Context, *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error)
	ApplyEvent(context.Context, *connect.Request[api.ApplyEventRequest]) (*connect.Response[api.ApplyEventResponse], error)
	GetView(context.Context, *connect.Request[api.GetViewRequest]) (*connect.Response[api.GetViewResponse], error)
	SaveSplit(context.Context, *connect.Request[api.SaveSplitRequest]) (*connect.Response[api.SaveSplitResponse], error)
	ListSplits(context.Context, *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error)
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error)
	DeleteSplit(context.Context, *connect.Request[api.DeleteSplitRequest]) (*connect.Response[api.DeleteSplitResponse], error)
}

// NewTipServiceClient constructs a client for the service at baseURL, for
// example http://localhost:8080.
func NewTipServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TipServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &tipServiceClient{
		calculate:    connect.NewClient[api.CalculateRequest, api.CalculateResponse](httpClient, baseURL+TipServiceCalculateProcedure, opts...),
		listPresets:  connect.NewClient[api.ListPresetsRequest, api.ListPresetsResponse](httpClient, baseURL+TipServiceListPresetsProcedure, opts...),
		startSession: connect.NewClient[api.StartSessionRequest, api.StartSessionResponse](httpClient, baseURL+TipServiceStartSessionProcedure, opts...),
		endSession:   connect.NewClient[api.EndSessionRequest, api.EndSessionResponse](httpClient, baseURL+TipServiceEndSessionProcedure, opts...),
		applyEvent:   connect.NewClient[api.ApplyEventRequest, api.ApplyEventResponse](httpClient, baseURL+TipServiceApplyEventProcedure, opts...),
		getView:      connect.NewClient[api.GetViewRequest, api.GetViewResponse](httpClient, baseURL+TipServiceGetViewProcedure, opts...),
		saveSplit:    connect.NewClient[api.SaveSplitRequest, api.SaveSplitResponse](httpClient, baseURL+TipServiceSaveSplitProcedure, opts...),
		listSplits:   connect.NewClient[api.ListSplitsRequest, api.ListSplitsResponse](httpClient, baseURL+TipServiceListSplitsProcedure, opts...),
		getSplit:     connect.NewClient[api.GetSplitRequest, api.GetSplitResponse](httpClient, baseURL+TipServiceGetSplitProcedure, opts...),
		deleteSplit:  connect.NewClient[api.DeleteSplitRequest, api.DeleteSplitResponse](httpClient, baseURL+TipServiceDeleteSplitProcedure, opts...),
	}
}

type tipServiceClient struct {
	calculate    *connect.Client[api.CalculateRequest, api.CalculateResponse]
	listPresets  *connect.Client[api.ListPresetsRequest, api.ListPresetsResponse]
	startSession *connect.Client[api.StartSessionRequest, api.StartSessionResponse]
	endSession   *connect.Client[api.EndSessionRequest, api.EndSessionResponse]
	applyEvent   *connect.Client[api.ApplyEventRequest, api.ApplyEventResponse]
	getView      *connect.Client[api.GetViewRequest, api.GetViewResponse]
	saveSplit    *connect.Client[api.SaveSplitRequest, api.SaveSplitResponse]
	listSplits   *connect.Client[api.ListSplitsRequest, api.ListSplitsResponse]
	getSplit     *connect.Client[api.GetSplitRequest, api.GetSplitResponse]
	deleteSplit  *connect.Client[api.DeleteSplitRequest, api.DeleteSplitResponse]
}

func (c *tipServiceClient) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *tipServiceClient) ListPresets(ctx context.Context, req *connect.Request[api.ListPresetsRequest]) (*connect.Response[api.ListPresetsResponse], error) {
	return c.listPresets.CallUnary(ctx, req)
}

func (c *tipServiceClient) StartSession(ctx context.Context, req *connect.Request[api.StartSessionRequest]) (*connect.Response[api.StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *tipServiceClient) EndSession(ctx context.Context, req *connect.Request[api.EndSessionRequest]) (*connect.Response[api.EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}

func (c *tipServiceClient) ApplyEvent(ctx context.Context, req *connect.Request[api.ApplyEventRequest]) (*connect.Response[api.ApplyEventResponse], error) {
	return c.applyEvent.CallUnary(ctx, req)
}

func (c *tipServiceClient) GetView(ctx context.Context, req *connect.Request[api.GetViewRequest]) (*connect.Response[api.GetViewResponse], error) {
	return c.getView.CallUnary(ctx, req)
}

func (c *tipServiceClient) SaveSplit(ctx context.Context, req *connect.Request[api.SaveSplitRequest]) (*connect.Response[api.SaveSplitResponse], error) {
	return c.saveSplit.CallUnary(ctx, req)
}

func (c *tipServiceClient) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	return c.listSplits.CallUnary(ctx, req)
}

func (c *tipServiceClient) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

func (c *tipServiceClient) DeleteSplit(ctx context.Context, req *connect.Request[api.DeleteSplitRequest]) (*connect.Response[api.DeleteSplitResponse], error) {
	return c.deleteSplit.CallUnary(ctx, req)
}
