//go:build linux

package capture

import (
	"fmt"
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/record"
	"github.com/BurntSushi/xgb/xproto"

	"inputcap/internal/sink"
)

// Intercept-data categories of the RECORD enable stream.
const (
	recordFromServer = 0
	recordEndOfData  = 5
)

// recordSource captures input through the X11 RECORD extension. It holds
// two server connections: a control connection for keysym lookups and for
// disabling the context, and a data connection consumed exclusively by the
// blocking enable stream. The controller serializes Start/Stop, so the
// source itself carries no lock.
type recordSource struct {
	snk *sink.Sink

	ctrl *xgb.Conn
	data *xgb.Conn
	ctx  record.Context
	dec  *xDecoder
	done chan struct{}
}

// NewSource returns the X11 RECORD capture source. The RECORD extension is
// observe-only, so Options.SwallowEvents has no effect here.
func NewSource(s *sink.Sink, _ Options) Source {
	return &recordSource{snk: s}
}

func (s *recordSource) Start() error {
	ctrl, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("open control connection: %w", err)
	}
	if err := record.Init(ctrl); err != nil {
		ctrl.Close()
		return fmt.Errorf("RECORD extension unavailable: %w", err)
	}
	lookup, err := loadKeymap(ctrl)
	if err != nil {
		ctrl.Close()
		return err
	}

	data, err := xgb.NewConn()
	if err != nil {
		ctrl.Close()
		return fmt.Errorf("open record connection: %w", err)
	}
	if err := record.Init(data); err != nil {
		data.Close()
		ctrl.Close()
		return fmt.Errorf("RECORD extension on record connection: %w", err)
	}

	ctx, err := record.NewContextId(data)
	if err != nil {
		data.Close()
		ctrl.Close()
		return fmt.Errorf("allocate record context: %w", err)
	}
	ranges := []record.Range{{
		DeviceEvents: record.Range8{First: xKeyPress, Last: xMotionNotify},
	}}
	specs := []record.ClientSpec{record.ClientSpec(record.CsAllClients)}
	err = record.CreateContextChecked(data, ctx, record.ElementHeader(0), 1, 1, specs, ranges).Check()
	if err != nil {
		data.Close()
		ctrl.Close()
		return fmt.Errorf("create record context: %w", err)
	}

	s.ctrl = ctrl
	s.data = data
	s.ctx = ctx
	s.dec = &xDecoder{lookup: lookup}
	s.done = make(chan struct{})
	go s.run()
	return nil
}

// run is the dedicated capture worker. EnableContext blocks server-side
// for the whole session; every intercepted batch arrives as a further
// reply on the same cookie and is decoded and pushed on this goroutine,
// with no queueing in between.
func (s *recordSource) run() {
	defer close(s.done)

	cookie := record.EnableContext(s.data, s.ctx)
	for {
		reply, err := cookie.Reply()
		if err != nil {
			log.Printf("capture: record stream closed: %v", err)
			return
		}
		if reply == nil || reply.Category == recordEndOfData {
			return
		}
		if reply.Category != recordFromServer {
			continue
		}
		for raw := reply.Data; len(raw) >= xEventSize; raw = raw[xEventSize:] {
			if ev, ok := s.dec.decode(raw[:xEventSize]); ok {
				s.snk.Send(ev)
			}
		}
	}
}

func (s *recordSource) Stop() {
	if s.done == nil {
		return
	}

	// Disabling from the control connection makes the enable stream on the
	// data connection deliver end-of-data, which releases the worker.
	dataClosed := false
	if err := record.DisableContextChecked(s.ctrl, s.ctx).Check(); err != nil {
		log.Printf("capture: disable record context: %v", err)
		s.data.Close()
		dataClosed = true
	}
	<-s.done

	if err := record.FreeContextChecked(s.ctrl, s.ctx).Check(); err != nil {
		log.Printf("capture: free record context: %v", err)
	}
	if !dataClosed {
		s.data.Close()
	}
	s.ctrl.Close()

	s.ctrl = nil
	s.data = nil
	s.ctx = 0
	s.dec = nil
	s.done = nil
}

func (s *recordSource) CheckCapability() Capability {
	ok := x11RecordAvailable()
	return Capability{
		Available: ok,
		Details:   map[string]bool{"x11_record": ok},
	}
}

// RequestCapability mirrors availability: X11 has no grant step.
func (s *recordSource) RequestCapability() bool {
	return x11RecordAvailable()
}

func x11RecordAvailable() bool {
	conn, err := xgb.NewConn()
	if err != nil {
		return false
	}
	defer conn.Close()
	if err := record.Init(conn); err != nil {
		return false
	}
	if _, err := record.QueryVersion(conn, 1, 13).Reply(); err != nil {
		return false
	}
	return true
}

// loadKeymap fetches the server keyboard mapping once at start and returns
// a keycode-to-primary-keysym lookup for the decoder.
func loadKeymap(conn *xgb.Conn) (func(byte) uint32, error) {
	setup := xproto.Setup(conn)
	min := setup.MinKeycode
	max := setup.MaxKeycode
	reply, err := xproto.GetKeyboardMapping(conn, min, byte(max-min+1)).Reply()
	if err != nil {
		return nil, fmt.Errorf("load keyboard mapping: %w", err)
	}
	width := int(reply.KeysymsPerKeycode)
	if width <= 0 {
		return nil, fmt.Errorf("invalid keysyms-per-keycode %d", width)
	}
	syms := reply.Keysyms
	return func(code byte) uint32 {
		if code < byte(min) || code > byte(max) {
			return 0
		}
		idx := int(code-byte(min)) * width
		if idx >= len(syms) {
			return 0
		}
		return uint32(syms[idx])
	}, nil
}
