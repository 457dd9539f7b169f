package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/jfreymuth/oggvorbis"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/alignaudio/pkg/align"
	"github.com/xaionaro-go/alignaudio/pkg/pcm"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")

	method := align.MethodMSE
	pflag.Var(&method, "method", "offset search method: mse, corr, gccphat or fft")
	alignMode := align.AlignModeCrop
	pflag.Var(&alignMode, "align-mode", "how to remove the detected lag: crop or pad")
	fixMode := align.FixModeNone
	pflag.Var(&fixMode, "fix-length", "how to reconcile the lengths afterwards: none, shortest or longest")
	maxOffset := pflag.Int("max-offset", 48000, "maximum expected offset, in samples")
	lookahead := pflag.Int("lookahead", 0, "maximum amount of samples per comparison (0: no limit)")
	stride := pflag.Int("stride", 0, "decimation stride of the correlation method (0: the default of 4)")

	pcmFormat := pcm.PCMFormatFloat32LE
	pflag.Var(&pcmFormat, "pcm-format", "sample format of raw PCM inputs and of the outputs")
	channels := pflag.Int("channels", 1, "channel count of raw PCM inputs")
	pflag.Parse()

	if pflag.NArg() != 4 {
		panic(fmt.Errorf("expected exactly four arguments: <reference-input> <delayed-input> <reference-output> <delayed-output>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	reference := readSignal(ctx, pflag.Arg(0), pcmFormat, pcm.Channel(*channels))
	delayed := readSignal(ctx, pflag.Arg(1), pcmFormat, pcm.Channel(*channels))
	logger.Infof(ctx, "read %d reference and %d delayed samples", len(reference), len(delayed))

	alignedReference, alignedDelayed, err := align.Align(ctx, reference, delayed, align.AlignOptions{
		SearchOptions: align.SearchOptions{
			MaxOffsetSamples: *maxOffset,
			LookaheadSamples: *lookahead,
			Method:           method,
			Stride:           *stride,
		},
		AlignMode: alignMode,
		FixMode:   fixMode,
	})
	assertNoError(err)

	writeSignal(ctx, pflag.Arg(2), pcmFormat, alignedReference)
	writeSignal(ctx, pflag.Arg(3), pcmFormat, alignedDelayed)
}

// readSignal loads a file as a flat (mono) float32 signal. Files with an
// ".ogg" extension are decoded as Ogg/Vorbis, everything else is treated
// as headerless PCM of the given format.
func readSignal(
	ctx context.Context,
	path string,
	format pcm.PCMFormat,
	channels pcm.Channel,
) []float32 {
	if strings.HasSuffix(strings.ToLower(path), ".ogg") {
		file, err := os.Open(path)
		assertNoError(err)
		defer file.Close()

		data, oggFormat, err := oggvorbis.ReadAll(file)
		assertNoError(err)
		logger.Debugf(ctx, "%s: %d Hz, %d channel(s)", path, oggFormat.SampleRate, oggFormat.Channels)

		samples, err := pcm.Downmix(data, pcm.Channel(oggFormat.Channels))
		assertNoError(err)
		return samples
	}

	data, err := os.ReadFile(path)
	assertNoError(err)

	interleaved, err := pcm.DecodeSamples(format, data)
	assertNoError(err)

	samples, err := pcm.Downmix(interleaved, channels)
	assertNoError(err)
	return samples
}

func writeSignal(
	ctx context.Context,
	path string,
	format pcm.PCMFormat,
	samples []float32,
) {
	data, err := pcm.EncodeSamples(format, samples)
	assertNoError(err)

	file, err := os.Create(path)
	assertNoError(err)
	defer func() {
		assertNoError(file.Close())
	}()

	wc := datacounter.NewWriterCounter(file)
	_, err = wc.Write(data)
	assertNoError(err)
	logger.Infof(ctx, "%s: written %d bytes (%d samples, %v)", path, wc.Count(), len(samples), format)
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
