package erp

import "strings"

// PaymentMode is the ERP's payment-mode category.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeOnline PaymentMode = "OnlinePayment"
)

// String returns the string representation of the payment mode.
func (m PaymentMode) String() string {
	return string(m)
}

// paymentModes is the closed gateway-to-mode table. Lookups are
// case-insensitive; anything unlisted is treated as an online payment.
var paymentModes = map[string]PaymentMode{
	"razorpay":               PaymentModeOnline,
	"paytm":                  PaymentModeOnline,
	"payu":                   PaymentModeOnline,
	"mobikwik":               PaymentModeOnline,
	"cashfree":               PaymentModeOnline,
	"cod":                    PaymentModeCash,
	"cash":                   PaymentModeCash,
	"cash on delivery (cod)": PaymentModeCash,
}

// PaymentModeFor maps a storefront payment-gateway identifier to the ERP's
// payment mode. Unknown, empty, or absent gateways default to OnlinePayment.
func PaymentModeFor(gateway string) PaymentMode {
	if mode, ok := paymentModes[strings.ToLower(strings.TrimSpace(gateway))]; ok {
		return mode
	}
	return PaymentModeOnline
}

// stateCodes maps Indian state and union-territory names to their GST state
// codes, keyed lowercase.
var stateCodes = map[string]string{
	"jammu and kashmir":           "01",
	"himachal pradesh":            "02",
	"punjab":                      "03",
	"chandigarh":                  "04",
	"uttarakhand":                 "05",
	"haryana":                     "06",
	"delhi":                       "07",
	"rajasthan":                   "08",
	"uttar pradesh":               "09",
	"bihar":                       "10",
	"sikkim":                      "11",
	"arunachal pradesh":           "12",
	"nagaland":                    "13",
	"manipur":                     "14",
	"mizoram":                     "15",
	"tripura":                     "16",
	"meghalaya":                   "17",
	"assam":                       "18",
	"west bengal":                 "19",
	"jharkhand":                   "20",
	"odisha":                      "21",
	"chhattisgarh":                "22",
	"madhya pradesh":              "23",
	"gujarat":                     "24",
	"daman and diu":               "25",
	"dadra and nagar haveli":      "26",
	"maharashtra":                 "27",
	"karnataka":                   "29",
	"goa":                         "30",
	"lakshadweep":                 "31",
	"kerala":                      "32",
	"tamil nadu":                  "33",
	"puducherry":                  "34",
	"andaman and nicobar islands": "35",
	"telangana":                   "36",
	"andhra pradesh":              "37",
	"ladakh":                      "38",
}

// StateCodeFor resolves a province/state name to its GST state code.
// Lookups are case-insensitive; unmapped names resolve to an empty string.
func StateCodeFor(province string) string {
	return stateCodes[strings.ToLower(strings.TrimSpace(province))]
}
