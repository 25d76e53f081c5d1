package browser

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

// subscribeRuntimeSignals enables the CDP domains we observe and wires their
// events into the Tab's event channel. Callbacks run on gcd's delivery
// goroutine; everything they touch goes through dispatch or the tracker,
// both safe while the driver blocks on navigation.
func (t *Tab) subscribeRuntimeSignals(ctx context.Context) {
	t.t.Page.Enable()
	t.t.Inspector.Enable()
	t.t.Console.Enable()
	t.t.Runtime.Enable()
	t.t.Network.EnableWithParams(&gcdapi.NetworkEnableParams{
		MaxPostDataSize:       -1,
		MaxResourceBufferSize: -1,
		MaxTotalBufferSize:    -1,
	})

	t.subscribeConsole()
	t.subscribeExceptions()
	t.subscribeNetworkFailures()
	t.subscribeLoadEvent()
	t.subscribeCrashed(ctx)
}

func (t *Tab) subscribeConsole() {
	t.t.Subscribe("Console.messageAdded", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.ConsoleMessageAddedEvent{}
		if err := json.Unmarshal(payload, header); err != nil {
			return
		}
		if header.Params.Message == nil {
			return
		}
		t.dispatch(ConsoleMessageToRuntime(header.Params.Message))
	})
}

func (t *Tab) subscribeExceptions() {
	t.t.Subscribe("Runtime.exceptionThrown", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.RuntimeExceptionThrownEvent{}
		if err := json.Unmarshal(payload, header); err != nil {
			return
		}
		if header.Params.ExceptionDetails == nil {
			return
		}
		t.dispatch(ExceptionToRuntime(header.Params.ExceptionDetails))
	})
}

func (t *Tab) subscribeNetworkFailures() {
	// requestWillBeSent only feeds the tracker so loadingFailed can report
	// the method and URL of the request that died
	t.t.Subscribe("Network.requestWillBeSent", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.NetworkRequestWillBeSentEvent{}
		if err := json.Unmarshal(payload, header); err != nil {
			return
		}
		p := header.Params
		if p.Request == nil {
			return
		}
		t.requests.add(p.RequestId, p.Request.Method, p.Request.Url)
	})

	t.t.Subscribe("Network.loadingFailed", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.NetworkLoadingFailedEvent{}
		if err := json.Unmarshal(payload, header); err != nil {
			return
		}
		p := header.Params
		if p.Canceled {
			// navigation replaced the page, not a network fault
			return
		}
		req := t.requests.take(p.RequestId)
		t.dispatch(LoadingFailedToRuntime(p.ErrorText, p.BlockedReason, req))
	})
}

func (t *Tab) subscribeLoadEvent() {
	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		select {
		case t.navigationCh <- 0:
		case <-t.exitCh:
		default:
		}
	})
}

func (t *Tab) subscribeCrashed(ctx context.Context) {
	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		log.Ctx(ctx).Warn().Msgf("tab crashed: %s", string(payload))
		select {
		case t.crashedCh <- "crashed":
		case <-t.exitCh:
		}
	})

	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		reason := "detached"
		if err := json.Unmarshal(payload, header); err == nil {
			reason = header.Params.Reason
		}
		select {
		case t.crashedCh <- reason:
		case <-t.exitCh:
		}
	})
}
