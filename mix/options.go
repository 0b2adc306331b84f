package mix

type ArchiveOptions struct {
	VerifyChecksum bool
	Names          []string
}

type ArchiveOption func(*ArchiveOptions) error

func newDefaultArchiveOptions() *ArchiveOptions {
	return &ArchiveOptions{
		VerifyChecksum: true,
	}
}

// WithoutChecksumVerification skips the SHA-1 body digest check for
// archives that carry one.
func WithoutChecksumVerification() ArchiveOption {
	return func(opts *ArchiveOptions) error {
		opts.VerifyChecksum = false
		return nil
	}
}

// WithNames registers known entry names so Entries can report them.
func WithNames(names ...string) ArchiveOption {
	return func(opts *ArchiveOptions) error {
		opts.Names = append(opts.Names, names...)
		return nil
	}
}
