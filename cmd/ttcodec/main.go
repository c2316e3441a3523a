// Command ttcodec makes Ladon tokens and encodes or decodes Argus tokens.
//
//	ttcodec ladon -khronos 1670385975 -random 0x4ec5e0ea
//	ttcodec argus-decode TOKEN...
//	ttcodec argus-encode -random 0x573a78c2 PAYLOAD_HEX
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Skill/ttcodec/config"
	"github.com/Skill/ttcodec/internal/logger"
	"github.com/Skill/ttcodec/signer"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ttcodec ladon|argus-decode|argus-encode [flags] [args]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	var err error
	switch os.Args[1] {
	case "ladon":
		err = runLadon(cfg, log, os.Args[2:])
	case "argus-decode":
		err = runArgusDecode(cfg, log, os.Args[2:])
	case "argus-encode":
		err = runArgusEncode(cfg, log, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Errorw("command failed", "cmd", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func parseRandom(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "random %q", s)
	}
	return uint32(v), nil
}

func runLadon(cfg *config.Config, log *zap.SugaredLogger, args []string) error {
	fs := flag.NewFlagSet("ladon", flag.ExitOnError)
	khronos := fs.Uint64("khronos", uint64(time.Now().Unix()), "unix timestamp in seconds")
	random := fs.String("random", "", "32-bit random value, fresh when empty")
	_ = fs.Parse(args)

	l := signer.NewLadon(cfg.LicenseID, cfg.AppID, log)
	var (
		tok string
		err error
	)
	if *random == "" {
		tok, err = l.Encrypt(uint32(*khronos))
	} else {
		var r uint32
		if r, err = parseRandom(*random); err != nil {
			return err
		}
		tok, err = l.Make(uint32(*khronos), r)
	}
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func newArgus(cfg *config.Config, log *zap.SugaredLogger) (*signer.Argus, error) {
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	return signer.NewArgus(key, log)
}

func runArgusDecode(cfg *config.Config, log *zap.SugaredLogger, args []string) error {
	fs := flag.NewFlagSet("argus-decode", flag.ExitOnError)
	workers := fs.Int("workers", cfg.Workers, "concurrent decoders")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no tokens given")
	}

	a, err := newArgus(cfg, log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := a.DecodeBatch(ctx, fs.Args(), *workers)
	if err != nil {
		return err
	}
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			log.Warnw("decode failed", "index", i, "error", r.Err)
			continue
		}
		fmt.Printf("random=%#08x header=%x prefix_ok=%t\n", r.Token.Random, r.Token.Header, r.Token.PrefixMatches())
		fmt.Println(hex.EncodeToString(r.Token.Payload))
		pb, err := r.Token.Bean()
		if err != nil {
			log.Warnw("payload is not a bean", "index", i, "error", err)
			continue
		}
		if bean, err := signer.ParseArgusBean(pb); err == nil {
			fmt.Println(bean)
		}
		fmt.Println(pb)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d tokens failed", failed, len(results))
	}
	return nil
}

func runArgusEncode(cfg *config.Config, log *zap.SugaredLogger, args []string) error {
	fs := flag.NewFlagSet("argus-encode", flag.ExitOnError)
	random := fs.String("random", "0", "32-bit random value")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("expected one hex payload")
	}

	payload, err := hex.DecodeString(fs.Arg(0))
	if err != nil {
		return errors.Wrap(err, "payload hex")
	}
	r, err := parseRandom(*random)
	if err != nil {
		return err
	}
	a, err := newArgus(cfg, log)
	if err != nil {
		return err
	}
	tok, err := a.Encode(payload, r, config.DefaultArgusHeader)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
