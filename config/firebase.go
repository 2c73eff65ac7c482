package config

// FirebaseEnabled reports whether FCM pushes should be initialised.
func FirebaseEnabled() bool {
	return AppConfig.FirebaseCredentialsPath != ""
}

// CloudinaryConfigured reports whether all Cloudinary credentials are present.
func CloudinaryConfigured() bool {
	return AppConfig.CloudinaryCloudName != "" &&
		AppConfig.CloudinaryAPIKey != "" &&
		AppConfig.CloudinaryAPISecret != ""
}
