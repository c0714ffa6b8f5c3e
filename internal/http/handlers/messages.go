package handlers

var messages = map[string]map[string]string{
	"en": {
		"bad_request":           "The request body could not be read.",
		"invalid_prompt":        "Please describe your logo in 1 to 500 characters.",
		"invalid_style":         "Unknown logo style.",
		"not_found":             "Job not found.",
		"job_not_done":          "The logo is not ready yet.",
		"streaming_unsupported": "Streaming is not supported by this connection.",
		"internal":              "Something went wrong. Please try again.",
	},
	"id": {
		"bad_request":           "Isi permintaan tidak dapat dibaca.",
		"invalid_prompt":        "Jelaskan logo Anda dalam 1 sampai 500 karakter.",
		"invalid_style":         "Gaya logo tidak dikenal.",
		"not_found":             "Pekerjaan tidak ditemukan.",
		"job_not_done":          "Logo belum siap.",
		"streaming_unsupported": "Koneksi ini tidak mendukung streaming.",
		"internal":              "Terjadi kesalahan. Silakan coba lagi.",
	},
}

func localizedMessage(locale, code string) string {
	if msg, ok := messages[locale][code]; ok {
		return msg
	}
	if msg, ok := messages["en"][code]; ok {
		return msg
	}
	return code
}
