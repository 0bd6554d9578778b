// Package pypi provides a client for Python Simple Repository API indexes.
//
// # Overview
//
// [Client] talks to any PEP 503/691 index: https://pypi.org/simple/ by
// default, or a mirror, a devpi server or a private index. It builds request
// URLs and Accept headers with package simple, performs the request through
// [integrations.Client] and dispatches on the response Content-Type:
//
//   - application/vnd.pypi.simple.v1+json, application/vnd.pypi.simple.latest+json: JSON decoder
//   - application/vnd.pypi.simple.v1+html, text/html: HTML decoder
//   - anything else: [*UnsupportedMediaTypeError]
//
// HTML bodies in a legacy charset are converted to UTF-8 first.
//
// # Usage
//
//	client, err := pypi.NewClient(pypi.Options{Cache: c, CacheTTL: time.Hour})
//	if err != nil {
//	    return err
//	}
//	details, err := client.FetchProject(ctx, "requests", false)  // false = use cache
//
// # Versions
//
// Documents from a newer minor API revision decode normally and log a
// warning; documents from another major revision fail with
// [*simple.UnsupportedVersionError].
//
// [integrations.Client]: github.com/matzehuels/simpleindex/pkg/integrations.Client
package pypi
