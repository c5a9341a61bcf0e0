//go:build no_gpl

package decompress

import "errors"

func newLzo(Config) (Engine, error) {
	return nil, errors.New("lzo compression is disabled in this build with no_gpl")
}
