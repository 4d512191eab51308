//go:build unix

package editor

import "golang.org/x/sys/unix"

func accessible(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK)
}
