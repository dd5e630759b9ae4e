package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/helpcar/quotechat/pkg/locale"
)

// ListLocales prints the languages of the embedded catalogs, plus those of dir when given.
func ListLocales(ctx context.Context, dir string, out io.Writer) error {
	bundle, err := locale.NewBundle()
	if err != nil {
		return err
	}
	if dir != "" {
		src, err := locale.OpenDir(dir)
		if err != nil {
			return err
		}
		locale.Load(ctx, bundle, src, nil)
	}
	fmt.Fprintln(out, strings.Join(bundle.Languages(), "\n"))
	return nil
}

// ValidateLocales checks every catalog of dir. Unknown entries are errors; missing
// keys are reported and fall back to the embedded defaults at runtime.
func ValidateLocales(ctx context.Context, dir string, out io.Writer) error {
	src, err := locale.OpenDir(dir)
	if err != nil {
		return err
	}
	cats, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return fmt.Errorf("no catalogs found in %s", dir)
	}

	var failed []error
	for _, cat := range cats {
		err := cat.Validate()
		var verr *locale.ValidationError
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s: ok\n", cat.Language)
		case errors.As(err, &verr) && len(verr.Unknown) == 0:
			fmt.Fprintf(out, "%s: ok, %d keys use defaults\n", cat.Language, len(verr.Missing))
		default:
			fmt.Fprintf(out, "%s: %v\n", cat.Language, err)
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}
