package template

// Template is an email subject/body pair. Both parts may contain
// placeholders; the recognized domain variables are name, certificateLink,
// date and time, but callers can supply extras.
type Template struct {
	Subject string
	Body    string
}

// builtins is the named template set shipped with the service.
var builtins = map[string]Template{
	"default": {
		Subject: "Congratulations! Your Certificate is Ready 🎉",
		Body: `Hi {{name}},

Congratulations on your achievement! 🎉

We're excited to share your certificate with you. You can download it using the link below:

📜 Download your certificate: {{certificateLink}}

Keep up the great work!

Best regards,
The CertGen Team`,
	},

	"professional": {
		Subject: "🏆 Achievement Unlocked - Your Certificate Awaits!",
		Body: `Dear {{name}},

🎊 Fantastic news! You've successfully completed your certification!

Your dedication and hard work have paid off. We're thrilled to present you with your official certificate.

🔗 Access your certificate here: {{certificateLink}}

This achievement is a testament to your commitment to excellence. We're proud to have been part of your learning journey.

Congratulations once again!

Warm regards,
The Certification Team`,
	},

	"casual": {
		Subject: "🎓 Your Certificate is Here - Well Done {{name}}!",
		Body: `Hey {{name}}! 👋

Awesome job completing your certification! 🚀

You've put in the work, and now it's time to celebrate. Your certificate is ready and waiting for you.

👉 Grab your certificate: {{certificateLink}}

Share it with pride - you've earned it! 💪

Cheers to your success!
The Team 🎉`,
	},

	"formal": {
		Subject: "Certificate of Completion - {{name}}",
		Body: `Dear {{name}},

We are pleased to inform you that your certificate of completion has been generated and is now available for download.

Certificate Details:
- Recipient: {{name}}
- Date of Issue: {{date}}

Please find your certificate at the following link: {{certificateLink}}

Should you have any questions or require assistance, please do not hesitate to contact us.

Sincerely,
The Certification Authority`,
	},
}

// Builtin returns the named built-in template, falling back to "default"
// when the name is unknown or empty.
func Builtin(name string) Template {
	if t, ok := builtins[name]; ok {
		return t
	}
	return builtins["default"]
}

// Default returns the default template.
func Default() Template {
	return builtins["default"]
}
