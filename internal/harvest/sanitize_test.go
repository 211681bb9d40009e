package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean name unchanged", in: "prices-2024.csv", want: "prices-2024.csv"},
		{name: "spaces replaced", in: "monthly report.pdf", want: "monthly_report.pdf"},
		{name: "path separators replaced", in: "../etc/passwd", want: ".._etc_passwd"},
		{name: "unicode replaced", in: "précis.zip", want: "pr_cis.zip"},
		{name: "empty stays empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"a b c.zip", "weird/!@#$.csv", "plain.txt", "ünïcode"}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		require.Equal(t, once, SanitizeFilename(once))
		require.Regexp(t, `^[A-Za-z0-9._-]*$`, once)
	}
}

func TestSanitizeFilenameOnlySafeChars(t *testing.T) {
	t.Parallel()

	got := SanitizeFilename("a&b|c;d e\tf.csv")
	require.Equal(t, "a_b_c_d_e_f.csv", got)
}
