package main

// Version represents the current version of the application
const Version = "0.4.0"

// AppName names the lock, log files and notifications.
const AppName = "macrokeys"
