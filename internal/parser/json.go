package parser

// EndpointJSON is the serialized form of an Endpoint.
type EndpointJSON struct {
	Endpoint string          `json:"endpoint"`
	Method   string          `json:"method"`
	Params   []ParameterJSON `json:"params"`
}

// ParameterJSON is the serialized form of a Parameter. Example is omitted
// when empty.
type ParameterJSON struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Desc     string `json:"desc"`
	Type     string `json:"type"`
	Example  string `json:"example,omitempty"`
}

// ToJSON converts the endpoint to its output form. The documentation URL
// is not part of the output.
func (e Endpoint) ToJSON() EndpointJSON {
	params := make([]ParameterJSON, 0, len(e.Params))
	for _, p := range e.Params {
		params = append(params, p.ToJSON())
	}
	return EndpointJSON{
		Endpoint: e.Path,
		Method:   e.Method,
		Params:   params,
	}
}

// ToJSON converts the parameter to its output form.
func (p Parameter) ToJSON() ParameterJSON {
	return ParameterJSON{
		Name:     p.Name,
		Required: p.Required,
		Desc:     p.Description,
		Type:     p.Type,
		Example:  p.Example,
	}
}
