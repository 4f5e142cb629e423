package cache_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/cache"
)

type measured struct{}

func (measured) SizeBytes() int64 { return 12345 }

func TestSizeOf(t *testing.T) {
	t.Run("strings charge two bytes per character", func(t *testing.T) {
		gt.Number(t, cache.SizeOf("abcd")).Equal(8)
		gt.Number(t, cache.SizeOf("")).Equal(0)
	})

	t.Run("numbers charge eight bytes", func(t *testing.T) {
		gt.Number(t, cache.SizeOf(42)).Equal(8)
		gt.Number(t, cache.SizeOf(3.14)).Equal(8)
		gt.Number(t, cache.SizeOf(int64(-1))).Equal(8)
	})

	t.Run("bools charge four bytes", func(t *testing.T) {
		gt.Number(t, cache.SizeOf(true)).Equal(4)
	})

	t.Run("nil charges nothing", func(t *testing.T) {
		gt.Number(t, cache.SizeOf(nil)).Equal(0)
		var p *int
		gt.Number(t, cache.SizeOf(p)).Equal(0)
	})

	t.Run("slices sum their elements", func(t *testing.T) {
		gt.Number(t, cache.SizeOf([]int{1, 2, 3})).Equal(24)
		gt.Number(t, cache.SizeOf([]string{"ab", "cd"})).Equal(8)
	})

	t.Run("maps include key overhead", func(t *testing.T) {
		// key "ab" = 4, value 8
		gt.Number(t, cache.SizeOf(map[string]int{"ab": 1})).Equal(12)
	})

	t.Run("structs include field name overhead", func(t *testing.T) {
		v := struct {
			N int
			S string
		}{N: 1, S: "xy"}
		// names "N"+"S" = 4, int = 8, "xy" = 4
		gt.Number(t, cache.SizeOf(v)).Equal(16)
	})

	t.Run("measurable values report their own size", func(t *testing.T) {
		gt.Number(t, cache.SizeOf(measured{})).Equal(12345)
	})
}
