package webclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/nodepress/designer/internal/logging"
)

// ChromeDPClient renders pages in a headless browser. Used for marketplace
// preview screenshots and for fetching pages whose markup is built by script.
type ChromeDPClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      logging.Logger
}

func NewChromeDPClient(cfg *Config, logger logging.Logger) (*ChromeDPClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	componentLogger.Info("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromeDPClient{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		idleAfter:   idleAfter,
		logger:      componentLogger,
	}, nil
}

// waitNetworkIdle signals once no network requests have been in flight for
// idleAfter. The once guard matters: the timer can fire multiple times.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					close(idleChan)
				})
			}
		})
	}
	startTimer()

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

// Do navigates to req.URL, waits for the network to settle, and returns the
// rendered outer HTML. With Options["screenshot"] == "true" it also captures
// a full-page screenshot.
func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	cdc.logger.Debug("rendering page",
		logging.Field{Key: "url", Value: req.URL})

	tabCtx, cancel := chromedp.NewContext(cdc.allocCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var tcancel context.CancelFunc
		tabCtx, tcancel = context.WithDeadline(tabCtx, deadline)
		defer tcancel()
	}

	waitIdleChan := waitNetworkIdle(tabCtx, cdc.idleAfter)

	if err := chromedp.Run(tabCtx, chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-waitIdleChan:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
	}

	var html string
	actions := []chromedp.Action{chromedp.OuterHTML("html", &html)}

	var screenshot []byte
	if req.Options["screenshot"] == "true" {
		actions = append(actions, chromedp.FullScreenshot(&screenshot, 90))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("extract page: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       []byte(html),
		Screenshot: screenshot,
		Headers:    http.Header{},
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromeDPClient) Close() error {
	cdc.logger.Info("closing chromedp webclient")
	cdc.allocCancel()
	return nil
}
