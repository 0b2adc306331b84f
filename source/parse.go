package source

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/data/errors"
	"github.com/mwantia/cncmaps/source/archive"
	"github.com/mwantia/cncmaps/source/consul"
	"github.com/mwantia/cncmaps/source/direct"
	"github.com/mwantia/cncmaps/source/ephemeral"
	"github.com/mwantia/cncmaps/source/postgres"
	"github.com/mwantia/cncmaps/source/s3"
	"github.com/mwantia/cncmaps/source/sqlite"
)

var (
	_ Source = (*archive.ArchiveSource)(nil)
	_ Source = (*consul.ConsulSource)(nil)
	_ Source = (*direct.DirectSource)(nil)
	_ Source = (*ephemeral.EphemeralSource)(nil)
	_ Source = (*postgres.PostgresSource)(nil)
	_ Source = (*s3.S3Source)(nil)
	_ Source = (*sqlite.SQLiteSource)(nil)
)

const EphemeralAddress = ":ephemeral:"

// IsAddress reports whether address names a source by protocol rather than
// by a plain path.
func IsAddress(address string) bool {
	address = strings.TrimSpace(address)
	return address == EphemeralAddress || strings.Contains(address, "://")
}

// ParseAddress creates the source described by address. The source is not
// opened.
func ParseAddress(address string) (Source, error) {
	// Format address
	address = strings.TrimSpace(address)
	// Special 'direct no address declarations'
	if address == EphemeralAddress {
		return ephemeral.NewEphemeralSource(EphemeralAddress), nil
	}

	protocol, rest, ok := strings.Cut(address, "://")
	if !ok || rest == "" {
		return nil, errors.SourceAddress(data.ErrInvalid, address)
	}

	switch strings.ToLower(protocol) {
	// consul://<address>:<port>/<prefix>?token=<token>&datacenter=<dc>&namespace=<ns>
	case "consul":
		return parseConsulAddress(rest)
	// postgres://<user>:<pass>@<address>:<port>/<db>?<options>
	case "postgres", "postgresql", "psql":
		return postgres.NewPostgresSource("postgres://" + rest), nil
	// sqlite://<path>
	case "sqlite":
		return sqlite.NewSQLiteSource(rest), nil
	// s3://<address>:<port>/<bucket>/<prefix>?access_key=<key>&secret_key=<key>&ssl=<bool>
	case "s3", "minio":
		return parseS3Address(rest)
	// direct://<path>
	case "direct":
		return direct.NewDirectSource(rest), nil
	// mix://<path>
	case "mix":
		return archive.NewArchiveFileSource(rest), nil
	}

	return nil, errors.SourceAddress(data.ErrUnknownProto, address)
}

func parseConsulAddress(address string) (Source, error) {
	u, err := url.Parse("consul://" + address)
	if err != nil {
		return nil, errors.SourceAddress(err, address)
	}

	query := u.Query()
	return consul.NewConsulSource(&consul.ConsulSourceConfig{
		Address:    u.Host,
		Token:      query.Get("token"),
		Datacenter: query.Get("datacenter"),
		Namespace:  query.Get("namespace"),
		Prefix:     strings.TrimPrefix(u.Path, "/"),
	})
}

func parseS3Address(address string) (Source, error) {
	u, err := url.Parse("s3://" + address)
	if err != nil {
		return nil, errors.SourceAddress(err, address)
	}

	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if u.Host == "" || bucket == "" {
		return nil, errors.SourceAddress(fmt.Errorf("%w: endpoint and bucket required", data.ErrInvalid), address)
	}

	query := u.Query()
	useSsl := false
	if v := query.Get("ssl"); v != "" {
		if useSsl, err = strconv.ParseBool(v); err != nil {
			return nil, errors.SourceAddress(err, address)
		}
	}

	return s3.NewS3Source(u.Host, bucket, prefix, query.Get("access_key"), query.Get("secret_key"), useSsl)
}
