package vgspa

import "net/url"

// PathParam is parameter key/value pair extracted from a URL path.
type PathParam struct {
	Key   string
	Value string
}

// PathParamList is a slice of PathParam, in the order the parameters appear in the route.
type PathParamList []PathParam

// ByName returns the named parameter value or an empty string if not found.
func (ps PathParamList) ByName(name string) string {
	for i := range ps {
		if ps[i].Key == name {
			return ps[i].Value
		}
	}
	return ""
}

// Args returns just the values, positionally.
func (ps PathParamList) Args() []string {
	ret := make([]string, len(ps))
	for i := range ps {
		ret[i] = ps[i].Value
	}
	return ret
}

func (ps PathParamList) values() url.Values {
	ret := make(url.Values, len(ps))
	for _, p := range ps {
		ret.Set(p.Key, p.Value)
	}
	return ret
}
