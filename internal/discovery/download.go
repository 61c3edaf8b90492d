package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

// AudioBinary is a downloaded audio file.
type AudioBinary struct {
	Data        []byte
	ContentType string
}

// DownloadRequest describes an export download.
type DownloadRequest struct {
	Sources []sources.SourceConfig
	// PreferredIndex narrows every source to one candidate when set.
	PreferredIndex *int
	Term           string
	Reading        string
	// IdleTimeout aborts a body read that stalls this long, 0 disables it.
	IdleTimeout    time.Duration
	Language       string
	EnableDefaults bool
}

// DownloadTermAudio downloads the first audio file any source yields for
// the headword. Text to speech candidates are skipped. When every candidate
// fails the result is a *DownloadError carrying each failure.
func (p *Provider) DownloadTermAudio(ctx context.Context, req DownloadRequest) (*AudioBinary, error) {
	lang := sources.LookupLanguage(req.Language)

	all := append([]sources.SourceConfig(nil), req.Sources...)
	if req.EnableDefaults {
		all = append(all, sources.RequiredSources(lang.ISO, req.Sources)...)
	}

	var errs []error
	for i, cfg := range all {
		source := sources.AudioSource{
			Index:        i,
			Type:         cfg.Type,
			URL:          cfg.URL,
			Voice:        cfg.Voice,
			Downloadable: cfg.Type.Downloadable(),
		}
		infos := p.GetTermAudioInfoList(ctx, source, req.Term, req.Reading, lang)
		if req.PreferredIndex != nil {
			idx := *req.PreferredIndex
			if idx >= 0 && idx < len(infos) {
				infos = infos[idx : idx+1]
			} else {
				infos = nil
			}
		}

		for _, info := range infos {
			u, ok := info.(sources.URLInfo)
			if !ok {
				continue
			}
			bin, err := p.download(ctx, u.URL, cfg.Type, req.IdleTimeout)
			if err == nil {
				p.log.Info("downloaded audio", "source", cfg.Type, "url", u.URL, "bytes", len(bin.Data))
				return bin, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.log.Debug("download failed", "url", u.URL, "err", err)
			errs = append(errs, err)
		}
	}
	return nil, &DownloadError{Errors: errs}
}

func (p *Provider) download(ctx context.Context, rawURL string, t sources.SourceType, idle time.Duration) (*AudioBinary, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var timer *idleTimer
	if idle > 0 {
		timer = newIdleTimer(idle, func() { cancel(ErrIdleTimeout) })
		defer timer.stop()
	}

	resp, err := p.client.stream(ctx, rawURL)
	if err != nil {
		return nil, downloadErr(ctx, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	var r io.Reader = io.LimitReader(resp.Body, p.client.maxBody+1)
	if timer != nil {
		r = &progressReader{r: r, onRead: timer.reset}
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, downloadErr(ctx, err)
	}
	if int64(buf.Len()) > p.client.maxBody {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", rawURL, p.client.maxBody)
	}

	if err := sources.ValidateAudio(t, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return &AudioBinary{Data: buf.Bytes(), ContentType: resp.Header.Get("Content-Type")}, nil
}

// downloadErr reports the idle timeout in place of the cancellation it
// caused.
func downloadErr(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause == ErrIdleTimeout {
		return cause
	}
	return err
}

// idleTimer fires once when reset is not called for d.
type idleTimer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

func newIdleTimer(d time.Duration, fire func()) *idleTimer {
	return &idleTimer{d: d, timer: time.AfterFunc(d, fire)}
}

func (t *idleTimer) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Reset(t.d)
}

func (t *idleTimer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Stop()
}

type progressReader struct {
	r      io.Reader
	onRead func()
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.onRead()
	}
	return n, err
}
