package model

// WhoisRecord is a parsed WHOIS snapshot for a domain.
// Dates are kept as the raw registry strings; WHOIS date formats vary by
// registry and the record is stored verbatim rather than interpreted.
type WhoisRecord struct {
	// Registrar is the sponsoring registrar name.
	Registrar string

	// CreationDate is the domain registration date as reported.
	CreationDate string

	// ExpirationDate is the registry expiry date as reported.
	ExpirationDate string

	// UpdatedDate is the last-updated date as reported.
	UpdatedDate string

	// NameServers are the delegated name servers.
	NameServers []string

	// Status are the EPP domain status codes.
	Status []string

	// Emails are contact addresses present in the WHOIS response.
	Emails []string

	// Raw is the full WHOIS response text.
	Raw string
}

// ResolvedAddress is one (domain, IP) pair produced by DNS resolution.
type ResolvedAddress struct {
	Domain string
	IP     string
}
