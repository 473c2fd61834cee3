package domain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/prizechest/internal/common"
	"github.com/questx-lab/prizechest/internal/model"
	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/questx-lab/prizechest/internal/store"
	"github.com/questx-lab/prizechest/pkg/errorx"
	"github.com/questx-lab/prizechest/pkg/ws"
	"github.com/questx-lab/prizechest/pkg/xcontext"
)

const (
	wsTypeConfig      = "config"
	wsTypeWinners     = "winners"
	wsTypeClaim       = "claim"
	wsTypeClaimResult = "claim_result"
	wsTypeError       = "error"
)

type WsDomain interface {
	// Serve upgrades the request and streams catalog and winner updates
	// until the client disconnects. Clients may also claim over the same
	// connection.
	Serve(ctx context.Context, w http.ResponseWriter, r *http.Request)
	Close()
}

type wsDomain struct {
	store      store.Store
	drawDomain DrawDomain
	clients    *xsync.MapOf[string, *ws.Client]
	upgrader   websocket.Upgrader
}

func NewWsDomain(s store.Store, drawDomain DrawDomain) *wsDomain {
	return &wsDomain{
		store:      s,
		drawDomain: drawDomain,
		clients:    xsync.NewMapOf[*ws.Client](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (d *wsDomain) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot upgrade connection: %v", err)
		return
	}

	clientID := uuid.NewString()
	client := ws.NewClient(conn)
	d.clients.Store(clientID, client)
	gauge := common.PromGauges[common.SubscriberGauge].WithLabelValues()
	gauge.Inc()

	cancelCatalog := d.store.SubscribeCatalog(func(c prize.Catalog) {
		d.send(ctx, client, wsTypeConfig, structs.Map(model.ConvertDrawConfig(c)))
	})
	cancelWinners := d.store.SubscribeWinners(func(winners []prize.Winner) {
		data := []map[string]any{}
		for _, w := range model.ConvertWinners(winners) {
			data = append(data, structs.Map(w))
		}
		d.send(ctx, client, wsTypeWinners, data)
	})

	defer func() {
		client.Close()
		cancelCatalog()
		cancelWinners()
		d.clients.Delete(clientID)
		gauge.Dec()
	}()

	for msg := range client.R {
		d.handle(ctx, client, msg)
	}
}

// Close disconnects every live subscriber.
func (d *wsDomain) Close() {
	d.clients.Range(func(_ string, client *ws.Client) bool {
		client.Close()
		return true
	})
}

func (d *wsDomain) handle(ctx context.Context, client *ws.Client, msg []byte) {
	var req model.WsRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		d.sendError(ctx, client, errorx.New(errorx.BadRequest, "Invalid message"))
		return
	}

	switch req.Type {
	case wsTypeClaim:
		var claim model.ClaimPrizeRequest
		if err := mapstructure.Decode(req.Data, &claim); err != nil {
			d.sendError(ctx, client, errorx.New(errorx.BadRequest, "Invalid claim"))
			return
		}

		resp, err := d.drawDomain.Claim(ctx, &claim)
		if err != nil {
			d.sendError(ctx, client, err)
			return
		}

		d.send(ctx, client, wsTypeClaimResult, structs.Map(resp))

	default:
		d.sendError(ctx, client, errorx.New(errorx.BadRequest, "Unknown message type %q", req.Type))
	}
}

func (d *wsDomain) sendError(ctx context.Context, client *ws.Client, err error) {
	data := model.WsError{Code: int64(errorx.Unknown.Code), Error: errorx.Unknown.Message}
	var errx errorx.Error
	if errors.As(err, &errx) {
		data = model.WsError{Code: int64(errx.Code), Error: errx.Message}
	}

	d.send(ctx, client, wsTypeError, structs.Map(data))
}

func (d *wsDomain) send(ctx context.Context, client *ws.Client, msgType string, data any) {
	b, err := json.Marshal(model.WsMessage{Type: msgType, Data: data})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode %s message: %v", msgType, err)
		return
	}

	if err := client.Write(b); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot send %s message: %v", msgType, err)
	}
}
