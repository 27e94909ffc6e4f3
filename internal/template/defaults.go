package template

import "github.com/hrejuh/upiwatch/internal/model"

// Defaults returns the built-in template set covering the UPI providers and
// banks we see confirmation emails from. Patterns are compiled
// case-insensitively by the parser; the first non-empty capture group of
// each pattern yields the field value.
func Defaults() []model.BankTemplate {
	return []model.BankTemplate{
		{
			BankName:             "PhonePe",
			EmailDomainFilter:    "phonepe.com",
			SubjectPattern:       "Payment Successful",
			AmountPattern:        `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)`,
			ReferencePattern:     `UPI\s*(?:Ref|Reference)(?:\s*(?:No|Number))?\.?\s*:?\s*(\d{12})`,
			SenderIDPattern:      `(?:From|Debited from|Sent by)\s*:?\s*([\w.\-]+@[\w]+)`,
			ReceiverIDPattern:    `(?:To|Paid to|Credited to)\s*:?\s*([\w.\-]+@[\w]+)`,
			TransactionIDPattern: `Transaction\s*ID\s*:?\s*([A-Z0-9]+)`,
			Priority:             100,
		},
		{
			BankName:          "Google Pay",
			EmailDomainFilter: "google.com",
			SubjectPattern:    "You paid|payment to",
			AmountPattern:     `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)`,
			ReferencePattern:  `UPI\s*transaction\s*ID\s*:?\s*(\d{12})`,
			ReceiverIDPattern: `(?:to|paid)\s+([\w.\-]+@[\w]+)`,
			Priority:          90,
		},
		{
			BankName:             "Paytm",
			EmailDomainFilter:    "paytm.com",
			SubjectPattern:       "Payment Received",
			AmountPattern:        `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)`,
			ReferencePattern:     `(?:UPI\s*Ref|RRN)\s*(?:No\.?)?\s*:?\s*(\d{12})`,
			SenderIDPattern:      `(?:from|paid by)\s+([\w.\-]+@[\w]+)`,
			ReceiverIDPattern:    `(?:to|credited to)\s+([\w.\-]+@[\w]+)`,
			TransactionIDPattern: `Order\s*ID\s*:?\s*(\w+)`,
			Priority:             90,
		},
		{
			BankName:          "HDFC Bank",
			EmailDomainFilter: "hdfcbank.net",
			SubjectPattern:    "credited to your account",
			AmountPattern:     `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)\s*(?:has been|is|was)?\s*credited`,
			ReferencePattern:  `(?:UPI|IMPS)[\s/-]*(?:Ref\.?|reference)?\s*(?:no\.?)?\s*:?\s*(\d{12})`,
			SenderIDPattern:   `(?:from|by)\s+(?:VPA\s+)?([\w.\-]+@[\w]+)`,
			ReceiverIDPattern: `(?:to|in)\s+(?:VPA\s+)?([\w.\-]+@[\w]+)`,
			Priority:          80,
		},
		{
			BankName:          "ICICI Bank",
			EmailDomainFilter: "icicibank.com",
			SubjectPattern:    "UPI transaction",
			AmountPattern:     `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)`,
			ReferencePattern:  `UPI\s*Ref\.?\s*(?:no\.?)?\s*:?\s*(\d{12})`,
			SenderIDPattern:   `(?:from|remitter)\s+(?:VPA\s+)?([\w.\-]+@[\w]+)`,
			ReceiverIDPattern: `(?:to|beneficiary)\s+(?:VPA\s+)?([\w.\-]+@[\w]+)`,
			Priority:          80,
		},
		{
			// Last resort: any sender, bare amount plus a 12-digit reference.
			BankName:          "Generic UPI",
			EmailDomainFilter: model.WildcardDomain,
			SubjectPattern:    "payment|credited|received",
			AmountPattern:     `(?:₹|Rs\.?|INR)\s*([\d,]+(?:\.\d{1,2})?)`,
			ReferencePattern:  `\b(\d{12})\b`,
			ReceiverIDPattern: `\b([\w.\-]+@[a-z]+)\b`,
			Priority:          10,
		},
	}
}
