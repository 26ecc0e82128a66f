package gateway

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	MaxSMSReceivers  = 200
	MaxQueryPageSize = 50
	DefaultSMSType   = "normal"
)

type BindRequest struct {
	PhoneA string
	// PhoneB is required for AXB bindings and left empty for AXN.
	PhoneB           string
	EndDate          time.Time
	OtherCallAllowed bool
	RecordingEnabled bool
}

type BindSecondRequest struct {
	SubscriptionID   string
	PhoneB           string
	EndDate          time.Time
	OtherCallAllowed bool
	RecordingEnabled bool
}

type SMSRequest struct {
	ReceiverNumbers []string
	TemplateCode    string
	SignName        string
	SMSType         string
	TemplateParams  map[string]string
	Extend          string
}

type SMSQuery struct {
	ReceiverNumber string
	QueryDate      time.Time
	CurrentPage    int
	PageSize       int
	BizID          string
}

type TTSRequest struct {
	CalledNumber     string
	TemplateCode     string
	CalledShowNumber string
	Params           map[string]string
	Extend           string
}

// BindVirtualNumber creates the first leg of an AXB (or AXN) binding.
func (c *Client) BindVirtualNumber(ctx context.Context, req BindRequest) (Response, error) {
	if err := c.requirePartnerKey(); err != nil {
		return nil, err
	}
	if req.PhoneA == "" {
		return nil, invalid("phone A is required")
	}
	if req.EndDate.IsZero() {
		return nil, invalid("end date is required")
	}

	p := c.commonParams(MethodAXBBind)
	p["partner_key"] = c.partnerKey
	p["phone_no_a"] = req.PhoneA
	p["end_date"] = c.formatTime(req.EndDate)
	p["enable_other_call"] = strconv.FormatBool(req.OtherCallAllowed)
	p["need_record"] = strconv.FormatBool(req.RecordingEnabled)
	p.SetIfNotEmpty("phone_no_b", req.PhoneB)

	return c.call(ctx, p)
}

// BindVirtualNumberSecond attaches B to an existing AX binding.
func (c *Client) BindVirtualNumberSecond(ctx context.Context, req BindSecondRequest) (Response, error) {
	if err := c.requirePartnerKey(); err != nil {
		return nil, err
	}
	if req.SubscriptionID == "" {
		return nil, invalid("subscription id is required")
	}
	if req.PhoneB == "" {
		return nil, invalid("phone B is required")
	}
	if req.EndDate.IsZero() {
		return nil, invalid("end date is required")
	}

	p := c.commonParams(MethodAXBBindSecond)
	p["partner_key"] = c.partnerKey
	p["subs_id"] = req.SubscriptionID
	p["phone_no_b"] = req.PhoneB
	p["end_date"] = c.formatTime(req.EndDate)
	p["enable_other_call"] = strconv.FormatBool(req.OtherCallAllowed)
	p["need_record"] = strconv.FormatBool(req.RecordingEnabled)

	return c.call(ctx, p)
}

func (c *Client) UnbindVirtualNumber(ctx context.Context, subscriptionID string) (Response, error) {
	if err := c.requirePartnerKey(); err != nil {
		return nil, err
	}
	if subscriptionID == "" {
		return nil, invalid("subscription id is required")
	}

	p := c.commonParams(MethodAXBUnbind)
	p["partner_key"] = c.partnerKey
	p["subs_id"] = subscriptionID

	return c.call(ctx, p)
}

// SendSMS sends one template message to up to 200 receivers.
func (c *Client) SendSMS(ctx context.Context, req SMSRequest) (Response, error) {
	if len(req.ReceiverNumbers) == 0 {
		return nil, invalid("at least one receiver is required")
	}
	if len(req.ReceiverNumbers) > MaxSMSReceivers {
		return nil, invalid("%d receivers exceeds the limit of %d", len(req.ReceiverNumbers), MaxSMSReceivers)
	}
	for _, n := range req.ReceiverNumbers {
		if n == "" {
			return nil, invalid("receiver number is empty")
		}
	}
	if req.TemplateCode == "" {
		return nil, invalid("template code is required")
	}
	if req.SignName == "" {
		return nil, invalid("sign name is required")
	}

	smsType := req.SMSType
	if smsType == "" {
		smsType = DefaultSMSType
	}

	p := c.commonParams(MethodSMSSend)
	p["rec_num"] = strings.Join(req.ReceiverNumbers, ",")
	p["sms_template_code"] = req.TemplateCode
	p["sms_free_sign_name"] = req.SignName
	p["sms_type"] = smsType
	if len(req.TemplateParams) > 0 {
		if err := p.Set("sms_param", req.TemplateParams); err != nil {
			return nil, invalid("template params: %v", err)
		}
	}
	p.SetIfNotEmpty("extend", req.Extend)

	return c.call(ctx, p)
}

// QuerySMS pages through send records of one receiver on one day. Records
// are kept for 30 days.
func (c *Client) QuerySMS(ctx context.Context, q SMSQuery) (Response, error) {
	if q.ReceiverNumber == "" {
		return nil, invalid("receiver number is required")
	}
	if q.QueryDate.IsZero() {
		return nil, invalid("query date is required")
	}

	page := q.CurrentPage
	if page == 0 {
		page = 1
	}
	size := q.PageSize
	if size == 0 {
		size = MaxQueryPageSize
	}
	if page < 0 {
		return nil, invalid("current page %d is negative", page)
	}
	if size < 0 || size > MaxQueryPageSize {
		return nil, invalid("page size %d outside 1..%d", size, MaxQueryPageSize)
	}

	p := c.commonParams(MethodSMSQuery)
	p["rec_num"] = q.ReceiverNumber
	p["query_date"] = q.QueryDate.In(c.location).Format(QueryDateLayout)
	p["current_page"] = strconv.Itoa(page)
	p["page_size"] = strconv.Itoa(size)
	p.SetIfNotEmpty("biz_id", q.BizID)

	return c.call(ctx, p)
}

// TTSSingleCall places a text-to-speech notification call.
func (c *Client) TTSSingleCall(ctx context.Context, req TTSRequest) (Response, error) {
	if req.CalledNumber == "" {
		return nil, invalid("called number is required")
	}
	if req.TemplateCode == "" {
		return nil, invalid("tts template code is required")
	}
	if req.CalledShowNumber == "" {
		return nil, invalid("called show number is required")
	}

	p := c.commonParams(MethodTTSSingleCall)
	p["called_num"] = req.CalledNumber
	p["tts_code"] = req.TemplateCode
	p["called_show_num"] = req.CalledShowNumber
	if len(req.Params) > 0 {
		if err := p.Set("tts_param", req.Params); err != nil {
			return nil, invalid("tts params: %v", err)
		}
	}
	p.SetIfNotEmpty("extend", req.Extend)

	return c.call(ctx, p)
}

func (c *Client) formatTime(t time.Time) string {
	return t.In(c.location).Format(TimestampLayout)
}
