package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/des256/deli-sub001/com"
	"github.com/des256/deli-sub001/config"
	"github.com/des256/deli-sub001/internal/frames"
	"github.com/des256/deli-sub001/logging"
)

func main() {
	logging.ConfigureRuntime("delipub")

	configPath := flag.String("config", "", "path to TOML config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		log.Info().Str("path", *configPath).Msg("loaded config")
	}
	if cfg.LogLevel != "" && !logging.SetLevel(cfg.LogLevel) {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level in config")
	}

	srv, err := com.Listen[frames.Packet](cfg.ListenAddr, cfg.Options()...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}
	log.Info().Stringer("addr", srv.Addr()).Msg("publisher up")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return publish(ctx, srv, cfg.FrameInterval) })
	group.Go(func() error { return drainAcks(ctx, srv) })

	<-ctx.Done()
	_ = srv.Close()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("publisher stopped")
	}
	log.Info().Msg("publisher shut down")
}

// publish broadcasts a synthetic frame on every tick. A tick with no
// subscribers still advances the sequence so late joiners can tell how
// much they missed.
func publish(ctx context.Context, srv *com.Server[frames.Packet, *frames.Packet], interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		seq++
		pkt := frames.FramePacket(testPattern(seq))
		if err := srv.Send(ctx, &pkt); err != nil {
			if errors.Is(err, com.ErrServerClosed) {
				return nil
			}
			return err
		}
		if seq%256 == 0 {
			log.Debug().Uint64("seq", seq).Int("clients", srv.ClientCount()).Msg("broadcasting")
		}
	}
}

// drainAcks consumes acknowledgements so slow subscribers cannot back
// up the receive channel.
func drainAcks(ctx context.Context, srv *com.Server[frames.Packet, *frames.Packet]) error {
	for {
		pkt, err := srv.Recv(ctx)
		if err != nil {
			if errors.Is(err, com.ErrServerClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if pkt.Kind != frames.KindAck {
			log.Warn().Uint32("kind", uint32(pkt.Kind)).Msg("unexpected packet from subscriber")
			continue
		}
		log.Debug().Uint64("seq", pkt.Ack.Seq).Bool("ok", pkt.Ack.OK).Msg("ack")
	}
}

// testPattern fills a small grayscale frame with a rolling gradient.
func testPattern(seq uint64) frames.VideoFrame {
	const width, height = 64, 48
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(uint64(i) + seq)
	}
	return frames.VideoFrame{
		Seq:    seq,
		Width:  width,
		Height: height,
		Format: frames.PixelGray8,
		Data:   data,
	}
}
