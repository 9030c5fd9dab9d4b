package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zfpgo/zfp/bitstream"
	"github.com/zfpgo/zfp/field"
	"github.com/zfpgo/zfp/scalar"
	"github.com/zfpgo/zfp/stream"
)

func makeField2D(t *testing.T, nx, ny int) field.Field[float64] {
	t.Helper()
	data := make([]float64, nx*ny)
	for i := range data {
		data[i] = float64(i%13) - 6
	}
	f, err := field.New(data, nx, ny)
	require.NoError(t, err)

	return f
}

func TestCompressDecompressRoundTripSerial(t *testing.T) {
	f := makeField2D(t, 8, 8)
	p, _, err := stream.SetRate(scalar.Float64, 2, 16.0)
	require.NoError(t, err)

	s, err := bitstream.New(64)
	require.NoError(t, err)

	CompressFloat64(s, f, p)
	s.Rewind()

	out := make([]float64, len(f.Data))
	outField, err := field.New(out, 8, 8)
	require.NoError(t, err)
	DecompressFloat64(s, outField, p)

	for i := range f.Data {
		require.InDelta(t, f.Data[i], out[i], 1e-6)
	}
}

func TestCompressThreadedMatchesSerial(t *testing.T) {
	f := makeField2D(t, 16, 16)
	p, _, err := stream.SetRate(scalar.Float64, 2, 16.0)
	require.NoError(t, err)

	serial, err := bitstream.New(64)
	require.NoError(t, err)
	CompressFloat64(serial, f, p)

	pThreaded := p
	pThreaded.Exec = stream.ExecThreaded
	threaded, err := bitstream.New(64)
	require.NoError(t, err)
	CompressFloat64(threaded, f, pThreaded)

	require.Equal(t, serial.Bytes(), threaded.Bytes())
}

func TestOffloadFallsBackToSerialWhenBackendDeclines(t *testing.T) {
	f := makeField2D(t, 8, 8)
	p, _, err := stream.SetRate(scalar.Float64, 2, 16.0)
	require.NoError(t, err)

	serial, err := bitstream.New(64)
	require.NoError(t, err)
	CompressFloat64(serial, f, p)

	pOffload := p
	pOffload.Exec = stream.ExecOffload
	offloaded, err := bitstream.New(64)
	require.NoError(t, err)
	CompressFloat64(offloaded, f, pOffload, NoOffloadBackend{})

	require.Equal(t, serial.Bytes(), offloaded.Bytes())
}

func TestOffloadNonFixedRateNeverCallsBackend(t *testing.T) {
	f := makeField2D(t, 8, 8)
	p, err := stream.SetReversible(scalar.Float64)
	require.NoError(t, err)
	p.Exec = stream.ExecOffload

	s, err := bitstream.New(64)
	require.NoError(t, err)

	before := s.TellW()
	bits, ok := tryOffloadCompress(s, f, p, refusingBackend{}, p.MinBits == p.MaxBits)
	require.False(t, ok)
	require.Equal(t, 0, bits)
	require.Equal(t, before, s.TellW())
}

// refusingBackend panics if ever invoked, proving the non-fixed-rate path
// never reaches the backend at all (spec §5/§7).
type refusingBackend struct{}

func (refusingBackend) Name() string { return "refusing" }
func (refusingBackend) TryCompress(_, _ []byte, _ int, _ stream.Params) (int, bool) {
	panic("must not be called for non-fixed-rate configurations")
}
func (refusingBackend) TryDecompress(_, _ []byte, _ int, _ stream.Params) bool {
	panic("must not be called for non-fixed-rate configurations")
}
