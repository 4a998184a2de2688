package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ihttp "github.com/splitmesh/splitmesh/internal/http"
	"github.com/splitmesh/splitmesh/internal/script"
	"github.com/splitmesh/splitmesh/pkg/jsonpath"
)

// runIteration executes one pass through scenario's request list against
// client. Extracted variables flow from one request to later ones in the
// same iteration; nothing survives past the iteration, since a leaf
// script is a single self-contained unit of synthetic traffic.
//
// A nil scenario degenerates to a sleep, so a script with no HTTP work
// still produces an arrival-shaped iteration count for the engine's
// metrics.
func runIteration(ctx context.Context, client *ihttp.Client, scenario *script.Scenario) (success bool, bytes int64, err error) {
	if scenario == nil {
		select {
		case <-ctx.Done():
			return false, 0, ctx.Err()
		case <-time.After(time.Millisecond):
		}
		return true, 0, nil
	}

	vars := map[string]string{}
	success = true

	for i := range scenario.Requests {
		reqSpec := scenario.Requests[i]
		ok, n, rerr := runRequest(ctx, client, scenario, reqSpec, vars)
		bytes += n
		if rerr != nil {
			return false, bytes, fmt.Errorf("request %q: %w", requestLabel(reqSpec, i), rerr)
		}
		if !ok {
			success = false
		}
	}
	return success, bytes, nil
}

func requestLabel(r script.RequestSpec, index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", index+1)
}

func runRequest(ctx context.Context, client *ihttp.Client, scenario *script.Scenario, spec script.RequestSpec, vars map[string]string) (ok bool, bytes int64, err error) {
	method := spec.Method
	if method == "" {
		method = "GET"
	}

	req := ihttp.NewRequest(method, substitute(spec.URL, vars))
	for k, v := range scenario.Headers {
		req.WithHeader(k, substitute(v, vars))
	}
	for k, v := range spec.Headers {
		req.WithHeader(k, substitute(v, vars))
	}
	if spec.Body != "" {
		req.WithBody(substitute(spec.Body, vars))
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return false, 0, err
	}

	body, berr := resp.GetBodyAsString()
	if berr != nil {
		return false, 0, berr
	}
	bytes = int64(len(body))

	for _, ex := range spec.Extract {
		val, eerr := extractValue(ex, resp, body)
		if eerr != nil {
			continue // a missing extraction just leaves the variable unset
		}
		vars[ex.Name] = val
	}

	ok = true
	for _, a := range spec.Assertion {
		if !evaluateAssertion(a, resp, body) {
			ok = false
		}
	}
	return ok, bytes, nil
}

func extractValue(ex script.ExtractSpec, resp *ihttp.Response, body string) (string, error) {
	switch ex.Source {
	case "header":
		return resp.GetHeader(ex.Path), nil
	case "status":
		return strconv.Itoa(resp.StatusCode), nil
	default: // "body"
		return jsonpath.Extract(body, ex.Path)
	}
}

func evaluateAssertion(a script.AssertionSpec, resp *ihttp.Response, body string) bool {
	var actual string
	switch a.Type {
	case "status":
		actual = strconv.Itoa(resp.StatusCode)
	case "header":
		actual = resp.GetHeader(a.Path)
	case "duration":
		actual = strconv.FormatInt(resp.GetResponseTimeMillis(), 10)
	default: // "body"
		if a.Path != "" {
			v, err := jsonpath.Extract(body, a.Path)
			if err != nil {
				return false
			}
			actual = v
		} else {
			actual = body
		}
	}

	switch a.Condition {
	case "eq":
		return actual == a.Value
	case "neq":
		return actual != a.Value
	case "contains":
		return strings.Contains(actual, a.Value)
	case "lt":
		return numericCompare(actual, a.Value, func(x, y float64) bool { return x < y })
	case "gt":
		return numericCompare(actual, a.Value, func(x, y float64) bool { return x > y })
	default:
		return actual == a.Value
	}
}

func numericCompare(actual, want string, cmp func(x, y float64) bool) bool {
	x, err1 := strconv.ParseFloat(actual, 64)
	y, err2 := strconv.ParseFloat(want, 64)
	if err1 != nil || err2 != nil {
		return false
	}
	return cmp(x, y)
}

// substitute replaces every {{name}} placeholder in s with vars[name],
// leaving unknown placeholders untouched.
func substitute(s string, vars map[string]string) string {
	if s == "" || len(vars) == 0 {
		return s
	}
	for name, val := range vars {
		s = strings.ReplaceAll(s, "{{"+name+"}}", val)
	}
	return s
}
