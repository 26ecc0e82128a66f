package gateway

import "strings"

type Environment string

const (
	EnvProduction Environment = "production"
	EnvSandbox    Environment = "sandbox"
	EnvOversea    Environment = "oversea"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// TOP method names.
const (
	MethodAXBBind       = "alibaba.aliqin.secret.axb.bind"
	MethodAXBBindSecond = "alibaba.aliqin.secret.axb.bind.second"
	MethodAXBUnbind     = "alibaba.aliqin.secret.axb.unbind"
	MethodSMSSend       = "alibaba.aliqin.fc.sms.num.send"
	MethodSMSQuery      = "alibaba.aliqin.fc.sms.num.query"
	MethodTTSSingleCall = "alibaba.aliqin.fc.tts.num.singlecall"
)

// ResolveBaseURL maps a transport and environment to the gateway URL.
func ResolveBaseURL(secure bool, env Environment) (string, error) {
	if secure {
		switch env {
		case EnvSandbox:
			return "https://gw.api.tbsandbox.com/router/rest", nil
		case EnvProduction:
			return "https://eco.taobao.com/router/rest", nil
		case EnvOversea:
			return "https://api.taobao.com/router/rest", nil
		}
	} else {
		switch env {
		case EnvSandbox:
			return "http://gw.api.tbsandbox.com/router/rest", nil
		case EnvProduction:
			return "http://gw.api.taobao.com/router/rest", nil
		case EnvOversea:
			return "http://api.taobao.com/router/rest", nil
		}
	}
	return "", &ConfigurationError{Field: "environment", Reason: "unknown value " + string(env)}
}

func ParseEnvironment(s string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case "":
		return EnvSandbox, nil
	case EnvProduction, EnvSandbox, EnvOversea:
		return env, nil
	}
	return "", &ConfigurationError{Field: "environment", Reason: "unknown value " + s}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatXML:
		return f, nil
	}
	return "", &ConfigurationError{Field: "format", Reason: "unknown value " + s}
}

// ResponseKey is the top-level key the gateway wraps a method's result in,
// e.g. alibaba_aliqin_fc_sms_num_send_response.
func ResponseKey(method string) string {
	return strings.ReplaceAll(method, ".", "_") + "_response"
}
