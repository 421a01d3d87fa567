package rerank

import (
	"context"
	"fmt"
	"strings"
)

// FmtLogger writes log events to stdout for command line tooling.
func FmtLogger(ctx context.Context, msg string, args ...any) {
	var b strings.Builder
	b.WriteString(msg)

	for i := 0; i < len(args)-1; i += 2 {
		b.WriteString(fmt.Sprintf(" %v[%v]", args[i], args[i+1]))
	}

	fmt.Println(b.String())
}
