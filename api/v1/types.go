package v1

// Types of the Traefik introspection API (/api/...). Only the fields the harness
// reads or the stub serves are declared.

type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
	StatusWarning  Status = "warning"
)

type Router struct {
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Status      Status   `json:"status"`
	Rule        string   `json:"rule"`
	Service     string   `json:"service"`
	EntryPoints []string `json:"entryPoints,omitempty"`
	Middlewares []string `json:"middlewares,omitempty"`
	Using       []string `json:"using,omitempty"`
	Error       []string `json:"error,omitempty"`
}

type Middleware struct {
	Name     string         `json:"name"`
	Provider string         `json:"provider"`
	Status   Status         `json:"status"`
	Type     string         `json:"type"`
	UsedBy   []string       `json:"usedBy,omitempty"`
	Plugin   map[string]any `json:"plugin,omitempty"`
	Error    []string       `json:"error,omitempty"`
}

type Server struct {
	URL string `json:"url"`
}

type LoadBalancer struct {
	Servers        []Server `json:"servers,omitempty"`
	PassHostHeader bool     `json:"passHostHeader"`
}

type Service struct {
	Name         string        `json:"name"`
	Provider     string        `json:"provider"`
	Status       Status        `json:"status"`
	Type         string        `json:"type"`
	UsedBy       []string      `json:"usedBy,omitempty"`
	LoadBalancer *LoadBalancer `json:"loadBalancer,omitempty"`
	Error        []string      `json:"error,omitempty"`
}

type SectionCount struct {
	Total    int `json:"total"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

type HTTPOverview struct {
	Routers     SectionCount `json:"routers"`
	Services    SectionCount `json:"services"`
	Middlewares SectionCount `json:"middlewares"`
}

type Overview struct {
	HTTP      HTTPOverview `json:"http"`
	Features  Features     `json:"features"`
	Providers []string     `json:"providers"`
}

type Features struct {
	Tracing   string `json:"tracing"`
	Metrics   string `json:"metrics"`
	AccessLog bool   `json:"accessLog"`
}

type Version struct {
	Version   string `json:"Version"`
	Codename  string `json:"Codename"`
	StartDate string `json:"startDate"`
}
