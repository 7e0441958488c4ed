// Package purl parses and formats Package-URLs: the canonical identifier
// for a package's upstream source, of the form
//
//	pkg:<type>/<namespace>/<name>@<version>?<qualifiers>#<subpath>
package purl

import (
	"net/url"
	"sort"
	"strings"
)

// PURL is a fully decoded Package-URL. All fields are percent-decoded;
// missing components are the empty string or empty map, never absent.
type PURL struct {
	Scheme     string
	Type       string
	Namespace  string
	Name       string
	Version    string
	Qualifiers map[string]string
	Subpath    string
}

// Parse decodes a Package-URL string. It follows the upstream algorithm of
// stripping components from the right: subpath, then qualifiers, then the
// leading scheme, then type, then version, leaving namespace/name.
func Parse(s string) (PURL, error) {
	p := PURL{Qualifiers: map[string]string{}}

	if i := strings.LastIndex(s, "#"); i >= 0 {
		subpath := s[i+1:]
		s = s[:i]
		p.Subpath = cleanSubpath(subpath)
	}

	if i := strings.LastIndex(s, "?"); i >= 0 {
		qualifiers := s[i+1:]
		s = s[:i]
		q, err := parseQualifiers(qualifiers)
		if err != nil {
			return PURL{}, err
		}
		p.Qualifiers = q
	}

	if i := strings.Index(s, ":"); i >= 0 {
		p.Scheme = strings.ToLower(s[:i])
		s = s[i+1:]
	}

	s = strings.Trim(s, "/")

	if i := strings.Index(s, "/"); i >= 0 {
		p.Type = strings.ToLower(s[:i])
		s = s[i+1:]
	} else {
		p.Type = strings.ToLower(s)
		s = ""
	}

	if i := strings.LastIndex(s, "@"); i >= 0 {
		version, err := url.PathUnescape(s[i+1:])
		if err != nil {
			return PURL{}, err
		}
		p.Version = version
		s = s[:i]
	}

	if i := strings.LastIndex(s, "/"); i >= 0 {
		name, err := url.PathUnescape(s[i+1:])
		if err != nil {
			return PURL{}, err
		}
		p.Name = name
		s = s[:i]
	} else {
		name, err := url.PathUnescape(s)
		if err != nil {
			return PURL{}, err
		}
		p.Name = name
		s = ""
	}

	ns, err := decodeSegments(s)
	if err != nil {
		return PURL{}, err
	}
	p.Namespace = strings.Join(ns, "/")

	return p, nil
}

func parseQualifiers(raw string) (map[string]string, error) {
	out := map[string]string{}
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || v == "" {
			continue
		}
		key := strings.ToLower(k)
		value, err := url.PathUnescape(v)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// ChecksumList splits the "checksums" qualifier on commas, per spec.
func (p PURL) ChecksumList() []string {
	v, ok := p.Qualifiers["checksums"]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func cleanSubpath(raw string) string {
	segs, err := decodeSegments(strings.Trim(raw, "/"))
	if err != nil {
		return ""
	}
	kept := segs[:0]
	for _, s := range segs {
		if s == "" || s == "." || s == ".." {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, "/")
}

func decodeSegments(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// Format serializes a PURL back to its canonical string form.
func (p PURL) Format() string {
	var b strings.Builder

	scheme := p.Scheme
	if scheme == "" {
		scheme = "pkg"
	}
	b.WriteString(scheme)
	b.WriteString(":")
	b.WriteString(p.Type)
	b.WriteString("/")

	if p.Namespace != "" {
		for _, seg := range strings.Split(p.Namespace, "/") {
			b.WriteString(url.PathEscape(seg))
			b.WriteString("/")
		}
	}
	b.WriteString(url.PathEscape(p.Name))

	if p.Version != "" {
		b.WriteString("@")
		b.WriteString(url.PathEscape(p.Version))
	}

	if len(p.Qualifiers) > 0 {
		keys := make([]string, 0, len(p.Qualifiers))
		for k := range p.Qualifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("?")
		for i, k := range keys {
			if i > 0 {
				b.WriteString("&")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(url.PathEscape(p.Qualifiers[k]))
		}
	}

	if p.Subpath != "" {
		b.WriteString("#")
		for i, seg := range strings.Split(p.Subpath, "/") {
			if i > 0 {
				b.WriteString("/")
			}
			b.WriteString(url.PathEscape(seg))
		}
	}

	return b.String()
}
