package config

import (
	"net/url"
	"strings"
)

// NormalizeCatalogKind maps accepted aliases onto the registered catalog
// kinds. Unknown values are returned lower-cased for Validate to reject.
func NormalizeCatalogKind(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "postgresql", "pg":
		return "postgres"
	case "sqlserver":
		return "mssql"
	default:
		return s
	}
}

// CatalogDSNFromEnv assembles a catalog DSN from component variables, for
// deployments that inject host and credentials separately:
//
//	DSN_HOST DSN_PORT DSN_USER DSN_PASSWORD DSN_DB
//	DSN_SSLMODE (postgres, default "disable")
//	DSN_ENCRYPT (mssql, default "disable")
//	DSN_SQLITE  (sqlite: a path or a full "file:" DSN)
//	DSN_PARAMS  extra query parameters, e.g. "connect_timeout=5"
//
// It returns "" when the variables for kind are not set.
func CatalogDSNFromEnv(kind string, getenv func(string) string) string {
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }
	params := get("DSN_PARAMS")

	switch NormalizeCatalogKind(kind) {
	case "sqlite":
		base := get("DSN_SQLITE")
		if base == "" {
			return ""
		}
		if !strings.Contains(base, ":") {
			base = "file:" + base
		}
		if params == "" {
			return base
		}
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + params

	case "postgres":
		if get("DSN_HOST") == "" {
			return ""
		}
		u := serverURL("postgresql", get, "5432")
		u.Path = "/" + get("DSN_DB")
		q := u.Query()
		q.Set("sslmode", or(get("DSN_SSLMODE"), "disable"))
		appendRawParams(q, params)
		u.RawQuery = q.Encode()
		return u.String()

	case "mssql":
		if get("DSN_HOST") == "" {
			return ""
		}
		u := serverURL("sqlserver", get, "1433")
		q := u.Query()
		if db := get("DSN_DB"); db != "" {
			q.Set("database", db)
		}
		q.Set("encrypt", or(get("DSN_ENCRYPT"), "disable"))
		appendRawParams(q, params)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return ""
}

func serverURL(scheme string, get func(string) string, defPort string) *url.URL {
	u := &url.URL{
		Scheme: scheme,
		Host:   get("DSN_HOST") + ":" + or(get("DSN_PORT"), defPort),
	}
	if user := get("DSN_USER"); user != "" {
		u.User = url.UserPassword(user, get("DSN_PASSWORD"))
	}
	return u
}

// appendRawParams merges a URL-encoded fragment into q. A malformed
// fragment is ignored.
func appendRawParams(q url.Values, raw string) {
	if raw == "" {
		return
	}
	parsed, err := url.ParseQuery(raw)
	if err != nil {
		return
	}
	for k, vals := range parsed {
		if strings.TrimSpace(k) == "" {
			continue
		}
		for _, v := range vals {
			q.Add(k, v)
		}
	}
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
