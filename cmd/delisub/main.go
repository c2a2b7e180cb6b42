package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/des256/deli-sub001/com"
	"github.com/des256/deli-sub001/config"
	"github.com/des256/deli-sub001/internal/frames"
	"github.com/des256/deli-sub001/logging"
)

// ackEvery spaces acknowledgements so the return path stays light.
const ackEvery = 64

func main() {
	logging.ConfigureRuntime("delisub")

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := com.Dial[frames.Packet](ctx, cfg.ServerAddr, cfg.Options()...)
	if err != nil {
		log.Fatal().Err(err).Str("server", cfg.ServerAddr).Msg("failed to connect")
	}
	log.Info().Stringer("server", client.RemoteAddr()).Msg("subscribed")

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	if err := subscribe(ctx, client); err != nil {
		log.Fatal().Err(err).Msg("subscriber stopped")
	}
	log.Info().Msg("subscriber shut down")
}

func subscribe(ctx context.Context, client *com.Client[frames.Packet, *frames.Packet]) error {
	var (
		received  uint64
		bytes     uint64
		lastSeq   uint64
		statsFrom = time.Now()
	)
	for {
		pkt, err := client.Recv(ctx)
		if err != nil {
			if errors.Is(err, com.ErrClientClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, com.ErrConnectionClosed) {
				log.Info().Msg("publisher went away")
				return nil
			}
			return err
		}
		if pkt.Kind != frames.KindFrame {
			log.Warn().Uint32("kind", uint32(pkt.Kind)).Msg("unexpected packet from publisher")
			continue
		}

		frame := pkt.Frame
		if lastSeq != 0 && frame.Seq > lastSeq+1 {
			log.Warn().Uint64("from", lastSeq).Uint64("to", frame.Seq).Msg("gap in frame sequence")
		}
		lastSeq = frame.Seq
		received++
		bytes += uint64(len(frame.Data))

		if received%ackEvery == 0 {
			ack := frames.AckPacket(frames.Ack{Seq: frame.Seq, OK: true})
			if err := client.Send(ctx, &ack); err != nil {
				return err
			}
		}
		if elapsed := time.Since(statsFrom); elapsed >= 5*time.Second {
			rate := float64(received) / elapsed.Seconds()
			log.Info().
				Uint64("frames", received).
				Uint64("bytes", bytes).
				Float64("fps", rate).
				Msg("throughput")
			received, bytes, statsFrom = 0, 0, time.Now()
		}
	}
}
