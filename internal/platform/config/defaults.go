package config

import "time"

// Default returns the baseline configuration. Values mirror the shipped
// deployments; anything secret is expected to arrive via environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "voicelock",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "voicelock.log",
		},
		Web: WebConfig{
			Enabled:      true,
			IP:           "0.0.0.0",
			Port:         8080,
			AdminUser:    "admin",
			AllowOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			DBPath: "voicelock.db",
		},
		Token: TokenConfig{
			PortName:    "COM15",
			BaudRate:    9600,
			ReadTimeout: 5 * time.Second,
			SettleDelay: 2 * time.Second,
			Codes: map[string]string{
				"98765": "john",
			},
			Store: TokenStoreConfig{
				Driver: "memory",
			},
		},
		Speech: SpeechConfig{
			Provider:       "openai",
			Model:          "whisper-1",
			CaptureTimeout: 10 * time.Second,
			PhraseLimit:    10 * time.Second,
		},
		Voice: VoiceConfig{
			Provider:    "edge",
			OutputDir:   "tmp",
			DeleteAudio: true,
		},
		Biometric: BiometricConfig{
			SampleRate: 22050,
			CoeffCount: 20,
		},
		Voiceprint: VoiceprintConfig{
			Dir:    "references",
			Prefix: "reference_",
			Ext:    ".wav",
		},
		Selected: SelectedConfig{
			Profile: "en",
		},
		Profiles: map[string]LocaleProfile{
			"en": enProfile(),
			"tr": trProfile(),
		},
	}
}

func enProfile() LocaleProfile {
	return LocaleProfile{
		LanguageTag: "en-US",
		STTLanguage: "en",
		TTSVoice:    "en-US-GuyNeural",
		// Tuned against the reference recordings for this voice set.
		MatchThreshold: 115,
		Commands: CommandVocabulary{
			Shutdown:    "shut down",
			Status:      "how are you",
			Date:        "date",
			AlarmPrefix: "set alarm",
			NotePrefix:  "take note",
			SearchWord:  "search",
			Enroll:      "new user registration",
			StopWords:   []string{"done", "finished", "stop"},
		},
		Prompts: map[string]string{
			"startup":             "Lock system activated. Please complete the authentication steps.",
			"auth_failed":         "Authentication failed. Please try again.",
			"connect_board":       "Please connect your board for card verification.",
			"board_detected":      "Board detected, performing verification...",
			"invalid_card":        "Invalid card code.",
			"board_unavailable":   "Could not communicate with the board.",
			"repeat_username":     "Please repeat your username for voice verification:",
			"no_voice_input":      "Voice input not detected, please try again.",
			"reference_missing":   "Reference voice file not found!",
			"auth_success":        "Two-factor authentication successful. Unlocking.",
			"voice_failed":        "Voice verification failed.",
			"firstrun_prompt":     "No reference voice found. Please say your name:",
			"name_not_detected":   "Name not detected, please try again.",
			"name_recorded":       "Your name has been recorded as the reference.",
			"ref_not_captured":    "Reference voice not captured, please try again.",
			"enroll_mode":         "Entering new user registration mode.",
			"enroll_name_prompt":  "Please say the new user's name:",
			"enroll_no_voice":     "No voice detected for registration.",
			"enroll_name_is":      "New user name: %s.",
			"enroll_name_failed":  "Could not capture the new user's name, please try again.",
			"already_enrolled":    "This user is already registered!",
			"enroll_record_ref":   "Recording reference voice for %s. Please repeat your name:",
			"enroll_ref_missing":  "Reference voice not detected.",
			"enroll_done":         "User registered successfully.",
			"waiting_command":     "Waiting for your command...",
			"no_command":          "No command detected, please try again.",
			"not_understood":      "I didn't understand that, please try again.",
			"repeat_please":       "I did not catch that, please repeat.",
			"speech_error":        "Error connecting to the speech service.",
			"shutdown":            "Shutting down the system.",
			"status_reply":        "I'm fine. I hope you are too!",
			"date_reply":          "Today's date is %s.",
			"alarm_set":           "Alarm set for %d:%02d.",
			"alarm_ring":          "Alarm is ringing!",
			"alarm_invalid":       "Invalid time format. For example: set alarm 15:30.",
			"alarm_need_time":     "Please specify a valid time, for example 'set alarm 15:30'.",
			"search_doing":        "Searching Google for %s.",
			"search_empty":        "No search query detected.",
			"note_start":          "Note taking started. Say your note. Say 'done' when finished.",
			"note_saved":          "Noted: %s",
			"note_retry":          "No voice detected, please try again.",
			"note_not_understood": "Sorry, I did not understand. Please repeat.",
			"note_error":          "Speech service error. Please try again later.",
			"note_done":           "Note taking finished. Your notes have been saved.",
			"locked":              "Please complete the authentication steps first.",
		},
	}
}

func trProfile() LocaleProfile {
	return LocaleProfile{
		LanguageTag:    "tr-TR",
		STTLanguage:    "tr",
		TTSVoice:       "tr-TR-AhmetNeural",
		MatchThreshold: 110,
		Commands: CommandVocabulary{
			Shutdown:    "sistem kapat",
			Status:      "nasılsın",
			Date:        "tarih",
			AlarmPrefix: "alarm kur",
			NotePrefix:  "not al",
			SearchWord:  "ara",
			Enroll:      "yeni kullanıcı kaydı",
			StopWords:   []string{"bitti"},
		},
		Prompts: map[string]string{
			"startup":             "Kilit sistemi etkinleştirildi. Lütfen doğrulama adımlarını takip edin.",
			"auth_failed":         "Doğrulama başarısız. Lütfen tekrar deneyin.",
			"connect_board":       "Lütfen kartınızı takın ve doğrulama için bekleyin.",
			"board_detected":      "Kart algılandı, doğrulama yapılıyor...",
			"invalid_card":        "Geçersiz kart kodu.",
			"board_unavailable":   "Kart ile iletişim kurulamadı.",
			"repeat_username":     "Lütfen kullanıcı adınızı sesle tekrar edin:",
			"no_voice_input":      "Ses alınamadı, tekrar deneyin.",
			"reference_missing":   "Referans ses dosyası bulunamadı!",
			"auth_success":        "İki aşamalı doğrulama başarılı. Kilit açılıyor.",
			"voice_failed":        "Ses doğrulaması başarısız. Yeniden deneyin.",
			"firstrun_prompt":     "Referans ses bulunamadı. Lütfen isminizi söyleyin:",
			"name_not_detected":   "İsim algılanamadı, lütfen tekrar deneyin.",
			"name_recorded":       "Adınız referans olarak kaydedildi.",
			"ref_not_captured":    "Referans sesi kaydedilemedi, lütfen tekrar deneyin.",
			"enroll_mode":         "Yeni kullanıcı kaydı moduna giriliyor.",
			"enroll_name_prompt":  "Lütfen yeni kullanıcının adını söyleyin:",
			"enroll_no_voice":     "Kayıt için ses alınamadı.",
			"enroll_name_is":      "Yeni kullanıcı adı: %s.",
			"enroll_name_failed":  "Yeni kullanıcının adı yakalanamadı, lütfen tekrar deneyin.",
			"already_enrolled":    "Bu kullanıcı zaten kayıtlı!",
			"enroll_record_ref":   "%s için referans sesi kaydediliyor. Lütfen adınızı tekrar edin:",
			"enroll_ref_missing":  "Referans sesi alınamadı.",
			"enroll_done":         "Kullanıcı başarıyla kaydedildi.",
			"waiting_command":     "Komut bekleniyor...",
			"no_command":          "Komut alınamadı, lütfen tekrar deneyin.",
			"not_understood":      "Bunu anlayamadım.",
			"repeat_please":       "Anlayamadım, lütfen tekrar edin.",
			"speech_error":        "Konuşma servisine ulaşılamadı.",
			"shutdown":            "Sistem kapatılıyor.",
			"status_reply":        "İyiyim. Umarım siz de iyisinizdir!",
			"date_reply":          "Bugünün tarihi %s.",
			"alarm_set":           "Alarm %d:%02d olarak ayarlandı.",
			"alarm_ring":          "Alarm çalıyor!",
			"alarm_invalid":       "Geçersiz zaman formatı. Örneğin: alarm kur 15:30.",
			"alarm_need_time":     "Lütfen geçerli bir zaman belirtin, örneğin 'alarm kur 15:30'.",
			"search_doing":        "%s için Google'da arama yapılıyor.",
			"search_empty":        "Aranacak ifade bulunamadı.",
			"note_start":          "Not almaya başlıyoruz. Bitirmek için 'bitti' deyin.",
			"note_saved":          "Not alındı: %s",
			"note_retry":          "Ses alınamadı, lütfen tekrar deneyin.",
			"note_not_understood": "Anlayamadım, lütfen tekrar edin.",
			"note_error":          "Not alınırken hata oluştu.",
			"note_done":           "Notunuz kaydedildi.",
			"locked":              "Lütfen önce doğrulama adımlarını tamamlayın.",
		},
	}
}

// Prompt looks up a prompt by key, returning the key itself when the profile
// does not define it so a missing translation stays visible instead of silent.
func (p LocaleProfile) Prompt(key string) string {
	if text, ok := p.Prompts[key]; ok {
		return text
	}
	return key
}
